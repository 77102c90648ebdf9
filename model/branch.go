package model

import (
	"github.com/dicabi/inmobiliaria/entity"
)

type Branch struct {
	Meta         `bson:",inline"`
	Name         string              `bson:"nombre" json:"nombre"`
	Address      string              `bson:"direccion" json:"direccion"`
	Municipality entity.Municipality `bson:"municipio" json:"municipio"`
}

func (b *Branch) Normalize() {
	trim(&b.Name, &b.Address)
	m := string(b.Municipality)
	trim(&m)
	b.Municipality = entity.Municipality(m)
}

func (b *Branch) Validate() FieldErrors {
	var c checker
	c.required("nombre", b.Name, "El nombre de la sucursal es requerido")
	c.required("direccion", b.Address, "La dirección es requerida")
	if c.required("municipio", string(b.Municipality), "El municipio es requerido") && !b.Municipality.IsValid() {
		c.add("municipio", "Municipio no válido. Debe ser uno de: "+entity.MunicipalityList())
	}
	return c.errs
}

// Building is an edificio hosting apartment models.
type Building struct {
	Meta     `bson:",inline"`
	Name     string `bson:"nombre" json:"nombre"`
	BranchID string `bson:"sucursal_idsucursal" json:"sucursal_idsucursal"`
}

func (b *Building) Normalize() { trim(&b.Name, &b.BranchID) }

func (b *Building) Validate() FieldErrors {
	var c checker
	c.required("nombre", b.Name, "El nombre del edificio es obligatorio")
	c.required("sucursal_idsucursal", b.BranchID, "La sucursal es obligatoria")
	return c.errs
}

// Residential is a residential development grouping residence models.
type Residential struct {
	Meta     `bson:",inline"`
	Name     string `bson:"nombre" json:"nombre"`
	BranchID string `bson:"sucursal_idsucursal" json:"sucursal_idsucursal"`
}

func (r *Residential) Normalize() { trim(&r.Name, &r.BranchID) }

func (r *Residential) Validate() FieldErrors {
	var c checker
	c.required("nombre", r.Name, "El nombre del residencial es obligatorio")
	c.required("sucursal_idsucursal", r.BranchID, "La sucursal es obligatoria")
	return c.errs
}
