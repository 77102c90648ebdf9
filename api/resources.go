package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dicabi/inmobiliaria/db"
	"github.com/dicabi/inmobiliaria/entity"
	"github.com/dicabi/inmobiliaria/logger"
	"github.com/dicabi/inmobiliaria/model"
)

// Collection names are the pluralised model names already used by existing
// databases.
const (
	collApartments      = "apartamentos"
	collLots            = "lotes"
	collSubdivisions    = "lotificacions"
	collBuildings       = "edificios"
	collModelApartments = "modeloapartamentos"
	collModelResidences = "modeloresidencias"
	collResidences      = "residencias"
	collResidentials    = "residencials"
	collBranches        = "sucursals"
)

type AppointmentNotifier interface {
	NotifyAppointment(ctx context.Context, r *model.Residence) error
}

type registrar interface {
	Register(r *mux.Router)
}

type residenceView struct {
	model.Residence
	Model *model.ModelResidence `json:"modelo_idmodelo"`
}

func newResources(deps Deps, cache *ModelCache, modelResidences db.Store[model.ModelResidence]) []registrar {
	b := deps.Backend

	apartments := &Resource[model.Apartment, *model.Apartment]{
		Path:         "apartamentos",
		Label:        "Apartamento",
		Store:        db.Collection[model.Apartment](b, collApartments),
		Filters:      map[string]string{"estado": "estado"},
		SearchFields: []string{"modeloApartamento_idmodelo", "descripcion"},
	}
	apartments.Routes = []Route{
		{Method: http.MethodPost, Path: "/{id}/descripcion-sugerida", Handler: apartments.Suggest(deps.Writer)},
	}

	lots := &Resource[model.Lot, *model.Lot]{
		Path:         "lotes",
		Label:        "Lote",
		Store:        db.Collection[model.Lot](b, collLots),
		Filters:      map[string]string{"lotificacion": "lotificacion_idotificacion"},
		SearchFields: []string{"nombre", "direccion", "descripcion"},
	}
	lots.Routes = []Route{
		{Method: http.MethodPost, Path: "/{id}/descripcion-sugerida", Handler: lots.Suggest(deps.Writer)},
	}

	subdivisions := &Resource[model.Subdivision, *model.Subdivision]{
		Path:         "lotificaciones",
		Label:        "Lotificación",
		Feminine:     true,
		Store:        db.Collection[model.Subdivision](b, collSubdivisions),
		Filters:      map[string]string{"sucursal": "sucursal_idsucursal"},
		SearchFields: []string{"nombre", "descripcion"},
	}

	buildings := &Resource[model.Building, *model.Building]{
		Path:         "edificios",
		Label:        "Edificio",
		Store:        db.Collection[model.Building](b, collBuildings),
		Filters:      map[string]string{"sucursal": "sucursal_idsucursal"},
		SearchFields: []string{"nombre"},
	}

	modelApartments := &Resource[model.ModelApartment, *model.ModelApartment]{
		Path:         "modelos-apartamento",
		Label:        "Modelo de apartamento",
		Store:        db.Collection[model.ModelApartment](b, collModelApartments),
		Filters:      map[string]string{"edificio": "edificio_idedificio"},
		SearchFields: []string{"folio", "numero", "direccionDicabi"},
	}

	modelResidencesRes := &Resource[model.ModelResidence, *model.ModelResidence]{
		Path:         "modelos-residencia",
		Label:        "Modelo de residencia",
		Store:        modelResidences,
		Filters:      map[string]string{"residencial": "residencial_idresidencial"},
		SearchFields: []string{"folio", "direccionDicabi"},
		AfterSave:    func(_ context.Context, m *model.ModelResidence) { cache.Forget(m.ID) },
		AfterDelete:  func(_ context.Context, m *model.ModelResidence) { cache.Forget(m.ID) },
	}

	residences := &Resource[model.Residence, *model.Residence]{
		Path:     "residencias",
		Label:    "Residencia",
		Feminine: true,
		Store:    db.Collection[model.Residence](b, collResidences),
		Filters:  map[string]string{"estatus": "estatus"},
		Present: func(ctx context.Context, r *model.Residence) (any, error) {
			m, err := cache.Lookup(ctx, r.ModelID)
			if err != nil {
				return nil, err
			}
			return residenceView{Residence: *r, Model: m}, nil
		},
		AfterSave: func(ctx context.Context, r *model.Residence) {
			if deps.Notifier == nil || r.Status != entity.ResidenceAppointment {
				return
			}
			if err := deps.Notifier.NotifyAppointment(ctx, r); err != nil {
				logger.FromContext(ctx).Warn("appointment notification failed",
					slog.String("residence_id", r.ID.Hex()), slog.String("error", err.Error()))
			}
		},
	}
	residences.Routes = []Route{
		{Method: http.MethodGet, Path: "/estatus/{estatus}", Handler: residences.ListBy(
			"estatus", "estatus",
			func(v string) bool { return entity.ResidenceStatus(v).IsValid() },
			[]db.SortKey{{Field: "hora"}},
			func(w http.ResponseWriter) {
				respondWithJSON(w, http.StatusBadRequest, map[string]any{
					"message":        "Estatus no válido",
					"estatusValidos": entity.ResidenceStatusNames(),
				})
			},
		)},
	}

	residentials := &Resource[model.Residential, *model.Residential]{
		Path:         "residenciales",
		Label:        "Residencial",
		Store:        db.Collection[model.Residential](b, collResidentials),
		Filters:      map[string]string{"sucursal": "sucursal_idsucursal"},
		SearchFields: []string{"nombre"},
	}

	branches := &Resource[model.Branch, *model.Branch]{
		Path:         "sucursales",
		Label:        "Sucursal",
		Feminine:     true,
		Store:        db.Collection[model.Branch](b, collBranches),
		Filters:      map[string]string{"municipio": "municipio"},
		SearchFields: []string{"nombre", "direccion"},
		Sort:         []db.SortKey{{Field: "nombre"}},
		Checks:       []func(*model.Branch) *model.ValidationError{checkMunicipality},
	}
	branches.Routes = []Route{
		{Method: http.MethodGet, Path: "/municipio/{municipio}", Handler: branches.ListBy(
			"municipio", "municipio",
			func(v string) bool { return entity.Municipality(v).IsValid() },
			[]db.SortKey{{Field: "nombre"}},
			func(w http.ResponseWriter) {
				writeJSONError(w, http.StatusBadRequest, "Municipio no válido", nil)
			},
		)},
	}

	return []registrar{
		apartments, lots, subdivisions, buildings, modelApartments,
		modelResidencesRes, residences, residentials, branches,
	}
}

// checkMunicipality rejects unknown municipalities before schema validation
// runs, with the short message the branch screen shows.
func checkMunicipality(b *model.Branch) *model.ValidationError {
	if !b.Municipality.IsValid() {
		return model.NewValidationError("municipio", "Municipio no válido")
	}
	return nil
}

func listMunicipalities(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, entity.Municipalities)
}

// EnsureIndexes creates the indexes the listings filter and sort on.
func EnsureIndexes(ctx context.Context, b *db.Backend) error {
	indexes := []struct {
		collection string
		fields     []string
	}{
		{collApartments, []string{"modeloApartamento_idmodelo"}},
		{collApartments, []string{"estado"}},
		{collApartments, []string{"precioventa"}},
		{collLots, []string{"lotificacion_idotificacion"}},
		{collSubdivisions, []string{"sucursal_idsucursal"}},
		{collResidences, []string{"estatus", "hora"}},
		{collBranches, []string{"nombre", "municipio"}},
	}
	for _, idx := range indexes {
		if err := b.EnsureIndex(ctx, idx.collection, idx.fields...); err != nil {
			return err
		}
	}
	return nil
}
