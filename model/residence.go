package model

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dicabi/inmobiliaria/entity"
)

var hourPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Residence is a concrete house built from a ModelResidence. Hour is present
// if and only if Status is Cita.
type Residence struct {
	Meta    `bson:",inline"`
	Status  entity.ResidenceStatus `bson:"estatus" json:"estatus"`
	Hour    string                 `bson:"hora,omitempty" json:"hora,omitempty"`
	ModelID primitive.ObjectID     `bson:"modelo_idmodelo" json:"modelo_idmodelo"`
}

func (r *Residence) Normalize() {
	r.Status = entity.ResidenceStatus(strings.TrimSpace(string(r.Status)))
	if r.Status == "" {
		r.Status = entity.ResidenceFree
	}
	r.Hour = strings.TrimSpace(r.Hour)
	if r.Status != entity.ResidenceAppointment {
		r.Hour = ""
	}
	// Stored as HH:MM so listings sort by hour as strings.
	if len(r.Hour) == 4 && hourPattern.MatchString(r.Hour) {
		r.Hour = "0" + r.Hour
	}
}

func (r *Residence) Validate() FieldErrors {
	var c checker
	if !r.Status.IsValid() {
		c.add("estatus", "Estatus no válido. Los valores permitidos son: "+strings.Join(entity.ResidenceStatusNames(), ", "))
	}
	if r.Status == entity.ResidenceAppointment {
		if c.required("hora", r.Hour, `La hora es requerida cuando el estatus es "Cita"`) && !hourPattern.MatchString(r.Hour) {
			c.add("hora", fmt.Sprintf("%s no es un formato de hora válido (HH:MM)", r.Hour))
		}
	}
	if r.ModelID.IsZero() {
		c.add("modelo_idmodelo", "El modelo de residencia es obligatorio")
	}
	return c.errs
}
