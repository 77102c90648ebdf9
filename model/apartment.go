package model

import (
	"fmt"
	"strings"

	"github.com/dicabi/inmobiliaria/entity"
)

type Apartment struct {
	Meta        `bson:",inline"`
	Price       *Number               `bson:"precioventa" json:"precioventa"`
	ModelID     string                `bson:"modeloApartamento_idmodelo" json:"modeloApartamento_idmodelo"`
	Description string                `bson:"descripcion" json:"descripcion"`
	State       entity.ApartmentState `bson:"estado" json:"estado"`
}

func (a *Apartment) Normalize() {
	trim(&a.ModelID, &a.Description)
	a.State = entity.ApartmentState(strings.TrimSpace(string(a.State)))
	if a.State == "" {
		a.State = entity.ApartmentAvailable
	}
}

func (a *Apartment) Validate() FieldErrors {
	var c checker
	if c.number("precioventa", a.Price, "El precio de venta es obligatorio") {
		c.nonNegative("precioventa", a.Price, "El precio no puede ser negativo")
	}
	if c.required("modeloApartamento_idmodelo", a.ModelID, "El modelo de apartamento es obligatorio") {
		c.maxLen("modeloApartamento_idmodelo", a.ModelID, 100, "El modelo no puede exceder los 100 caracteres")
	}
	c.maxLen("descripcion", a.Description, 500, "La descripción no puede exceder los 500 caracteres")
	if !a.State.IsValid() {
		c.add("estado", "Estado no válido. Los valores permitidos son: disponible, reservado, vendido")
	}
	return c.errs
}

func (a *Apartment) Facts() string {
	return fmt.Sprintf("Apartamento modelo %s, precio de venta %s MXN, estado %s. Notas: %s",
		a.ModelID, a.Price.String(), a.State, a.Description)
}
