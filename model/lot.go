package model

import "fmt"

type Lot struct {
	Meta          `bson:",inline"`
	Name          string  `bson:"nombre" json:"nombre"`
	Folio         string  `bson:"folio" json:"folio"`
	Partida       string  `bson:"partida" json:"partida"`
	Address       string  `bson:"direccion" json:"direccion"`
	Longitude     string  `bson:"longitud" json:"longitud"`
	Latitude      string  `bson:"latitud" json:"latitud"`
	Image         string  `bson:"imagen" json:"imagen"`
	Services      string  `bson:"servicios" json:"servicios"`
	Description   string  `bson:"descripcion" json:"descripcion"`
	Price         *Number `bson:"precioventa" json:"precioventa"`
	SubdivisionID string  `bson:"lotificacion_idotificacion" json:"lotificacion_idotificacion"`
}

func (l *Lot) Normalize() {
	trim(&l.Name, &l.Folio, &l.Partida, &l.Address, &l.Longitude, &l.Latitude,
		&l.Image, &l.Services, &l.Description, &l.SubdivisionID)
}

func (l *Lot) Validate() FieldErrors {
	var c checker
	c.required("nombre", l.Name, "")
	c.required("folio", l.Folio, "")
	c.required("partida", l.Partida, "")
	c.required("direccion", l.Address, "")
	c.required("longitud", l.Longitude, "")
	c.required("latitud", l.Latitude, "")
	c.required("imagen", l.Image, "")
	c.required("servicios", l.Services, "")
	c.required("descripcion", l.Description, "")
	if c.number("precioventa", l.Price, "El precio de venta es obligatorio") {
		c.nonNegative("precioventa", l.Price, "El precio no puede ser negativo")
	}
	c.required("lotificacion_idotificacion", l.SubdivisionID, "La lotificación es obligatoria")
	return c.errs
}

func (l *Lot) Facts() string {
	return fmt.Sprintf("Lote %q en %s (lat %s, lon %s), servicios: %s, precio de venta %s MXN. Notas: %s",
		l.Name, l.Address, l.Latitude, l.Longitude, l.Services, l.Price.String(), l.Description)
}

// Subdivision is a lotificación: a group of lots under one branch.
type Subdivision struct {
	Meta        `bson:",inline"`
	Name        string `bson:"nombre" json:"nombre"`
	BranchID    string `bson:"sucursal_idsucursal" json:"sucursal_idsucursal"`
	Description string `bson:"descripcion,omitempty" json:"descripcion,omitempty"`
}

func (s *Subdivision) Normalize() {
	trim(&s.Name, &s.BranchID, &s.Description)
}

func (s *Subdivision) Validate() FieldErrors {
	var c checker
	c.required("nombre", s.Name, "El nombre de la lotificación es obligatorio")
	c.required("sucursal_idsucursal", s.BranchID, "La sucursal es obligatoria")
	c.maxLen("descripcion", s.Description, 500, "La descripción no puede exceder los 500 caracteres")
	return c.errs
}
