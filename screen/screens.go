package screen

import "sort"

type Config struct {
	Title    string
	Resource string
	// Related is fetched alongside the list to fill the form's select.
	Related       string
	Columns       []string
	SearchFields  []string
	StatusField   string
	ConfirmPrompt string
}

var screens = map[string]Config{
	"apartamentos": {
		Title:         "Apartamentos",
		Resource:      "apartamentos",
		Columns:       []string{"modeloApartamento_idmodelo", "precioventa", "estado", "descripcion"},
		SearchFields:  []string{"modeloApartamento_idmodelo", "descripcion"},
		StatusField:   "estado",
		ConfirmPrompt: "¿Estás seguro de eliminar este apartamento?",
	},
	"lotes": {
		Title:         "Lotes",
		Resource:      "lotes",
		Related:       "lotificaciones",
		Columns:       []string{"nombre", "folio", "direccion", "servicios", "precioventa"},
		ConfirmPrompt: "¿Estás seguro de eliminar este lote?",
	},
	"lotificaciones": {
		Title:         "Lotificaciones",
		Resource:      "lotificaciones",
		Related:       "sucursales",
		Columns:       []string{"nombre", "descripcion"},
		SearchFields:  []string{"nombre", "descripcion"},
		ConfirmPrompt: "¿Estás seguro de eliminar esta lotificación?",
	},
	"edificios": {
		Title:         "Edificios",
		Resource:      "edificios",
		Related:       "sucursales",
		Columns:       []string{"nombre"},
		SearchFields:  []string{"nombre"},
		ConfirmPrompt: "¿Estás seguro de eliminar este edificio?",
	},
	"modelos-apartamento": {
		Title:         "Modelos de apartamento",
		Resource:      "modelos-apartamento",
		Columns:       []string{"folio", "numero", "metrosconstruccion", "cuartos", "baños"},
		SearchFields:  []string{"folio", "numero", "direccionDicabi"},
		ConfirmPrompt: "¿Estás seguro de eliminar este modelo?",
	},
	"modelos-residencia": {
		Title:         "Modelos de residencia",
		Resource:      "modelos-residencia",
		Columns:       []string{"folio", "terreno", "metrosconstruccion", "cuartos"},
		SearchFields:  []string{"folio", "direccionDicabi"},
		ConfirmPrompt: "¿Estás seguro de eliminar este modelo?",
	},
	"residencias": {
		Title:         "Residencias",
		Resource:      "residencias",
		Related:       "modelos-residencia",
		Columns:       []string{"estatus", "hora", "modelo_idmodelo.folio"},
		SearchFields:  []string{"estatus", "hora", "modelo_idmodelo.folio"},
		StatusField:   "estatus",
		ConfirmPrompt: "¿Estás seguro de eliminar esta residencia?",
	},
	"residenciales": {
		Title:         "Residenciales",
		Resource:      "residenciales",
		Related:       "sucursales",
		Columns:       []string{"nombre"},
		SearchFields:  []string{"nombre"},
		ConfirmPrompt: "¿Estás seguro de eliminar este residencial?",
	},
	"sucursales": {
		Title:         "Locales comerciales",
		Resource:      "sucursales",
		Columns:       []string{"nombre", "direccion", "municipio"},
		SearchFields:  []string{"nombre", "direccion", "municipio"},
		ConfirmPrompt: "¿Estás seguro de eliminar este local comercial?",
	},
}

func Lookup(resource string) (Config, bool) {
	cfg, ok := screens[resource]
	return cfg, ok
}

func Names() []string {
	names := make([]string, 0, len(screens))
	for name := range screens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const defaultColor = "#64748B"

var statusColors = map[string]string{
	"disponible": "#10B981",
	"reservado":  "#F59E0B",
	"vendido":    "#EF4444",
	"Libre":      "#68d391",
	"Cita":       "#f6e05e",
	"Vendido":    "#f56565",
}

// StatusColor maps apartment and residence states to their badge colour.
func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return defaultColor
}
