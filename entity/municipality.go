package entity

import "strings"

// Municipality is one of the municipalities of Aguascalientes where a branch may operate.
type Municipality string

var Municipalities = []Municipality{
	"Aguascalientes",
	"Asientos",
	"Calvillo",
	"Cosío",
	"El Llano",
	"Jesús María",
	"Pabellón de Arteaga",
	"Rincón de Romos",
	"San Francisco de los Romo",
	"San José de Gracia",
	"Tepezalá",
}

func (m Municipality) IsValid() bool {
	for _, v := range Municipalities {
		if m == v {
			return true
		}
	}
	return false
}

func MunicipalityList() string {
	names := make([]string, 0, len(Municipalities))
	for _, m := range Municipalities {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}
