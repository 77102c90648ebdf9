package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dicabi/inmobiliaria/db"
	"github.com/dicabi/inmobiliaria/logger"
	"github.com/dicabi/inmobiliaria/model"
)

type fakeNotifier struct {
	mu    sync.Mutex
	calls []model.Residence
	err   error
}

func (f *fakeNotifier) NotifyAppointment(_ context.Context, r *model.Residence) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, *r)
	return f.err
}

type fakeWriter struct {
	facts string
	text  string
	err   error
}

func (f *fakeWriter) Suggest(_ context.Context, facts string) (string, error) {
	f.facts = facts
	return f.text, f.err
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T, deps Deps) *testAPI {
	t.Helper()
	if deps.Backend == nil {
		deps.Backend = db.NewMemoryBackend()
	}
	if deps.CacheTTL == 0 {
		deps.CacheTTL = time.Minute
	}
	srv, err := NewServer("0", deps, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return &testAPI{t: t, handler: srv.Handler()}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *testAPI) create(path string, body any) map[string]any {
	a.t.Helper()
	rec := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[map[string]any](a.t, rec)
}

func TestApartmentLifecycle(t *testing.T) {
	a := newTestAPI(t, Deps{})

	rec := a.do(http.MethodPost, "/api/apartamentos", map[string]any{
		"precioventa":                500000,
		"modeloApartamento_idmodelo": "A1",
		"estado":                     "disponible",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	assert.Equal(t, 500000.0, created["precioventa"])
	assert.Equal(t, "A1", created["modeloApartamento_idmodelo"])
	assert.Equal(t, "disponible", created["estado"])
	assert.Equal(t, "", created["descripcion"])
	id, _ := created["_id"].(string)
	require.Len(t, id, 24)
	assert.NotEmpty(t, created["createdAt"])

	rec = a.do(http.MethodGet, "/api/apartamentos/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decodeBody[map[string]any](t, rec))

	rec = a.do(http.MethodDelete, "/api/apartamentos/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Apartamento eliminado correctamente", deleted["message"])
	assert.Equal(t, id, deleted["data"].(map[string]any)["_id"])

	rec = a.do(http.MethodGet, "/api/apartamentos/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Apartamento no encontrado", decodeBody[map[string]any](t, rec)["message"])
}

func TestApartmentRejectsNegativePrice(t *testing.T) {
	a := newTestAPI(t, Deps{})

	rec := a.do(http.MethodPost, "/api/apartamentos", map[string]any{
		"precioventa":                -10,
		"modeloApartamento_idmodelo": "A1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[messageBody](t, rec)
	assert.Equal(t, "El precio no puede ser negativo", body.Message)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "precioventa", body.Errors[0].Field)

	created := a.create("/api/apartamentos", map[string]any{"precioventa": 1, "modeloApartamento_idmodelo": "A1"})
	rec = a.do(http.MethodPut, "/api/apartamentos/"+created["_id"].(string), map[string]any{
		"precioventa":                -1,
		"modeloApartamento_idmodelo": "A1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApartmentListFilters(t *testing.T) {
	a := newTestAPI(t, Deps{})
	a.create("/api/apartamentos", map[string]any{"precioventa": 1, "modeloApartamento_idmodelo": "Foollano", "estado": "vendido"})
	a.create("/api/apartamentos", map[string]any{"precioventa": 2, "modeloApartamento_idmodelo": "B2", "descripcion": "Cerca del FOO park"})
	a.create("/api/apartamentos", map[string]any{"precioventa": 3, "modeloApartamento_idmodelo": "C3", "estado": "disponible"})

	rec := a.do(http.MethodGet, "/api/apartamentos?estado=disponible", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	available := decodeBody[[]model.Apartment](t, rec)
	require.Len(t, available, 2)
	for _, apt := range available {
		assert.Equal(t, "disponible", string(apt.State))
	}

	rec = a.do(http.MethodGet, "/api/apartamentos?search=foo", nil)
	found := decodeBody[[]model.Apartment](t, rec)
	require.Len(t, found, 2)
	assert.Equal(t, "B2", found[0].ModelID, "newest first")
	assert.Equal(t, "Foollano", found[1].ModelID)

	rec = a.do(http.MethodGet, "/api/apartamentos?estado=disponible&search=foo", nil)
	both := decodeBody[[]model.Apartment](t, rec)
	require.Len(t, both, 1)
	assert.Equal(t, "B2", both[0].ModelID)

	rec = a.do(http.MethodGet, "/api/apartamentos?estado=reservado", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestBranchMunicipalityValidation(t *testing.T) {
	a := newTestAPI(t, Deps{})

	rec := a.do(http.MethodPost, "/api/sucursales", map[string]any{
		"nombre": "Centro", "direccion": "Madero 1", "municipio": "Zacatecas",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Municipio no válido", decodeBody[messageBody](t, rec).Message)

	branch := a.create("/api/sucursales", map[string]any{
		"nombre": "Centro", "direccion": "Madero 1", "municipio": "Aguascalientes",
	})
	rec = a.do(http.MethodPut, "/api/sucursales/"+branch["_id"].(string), map[string]any{
		"nombre": "Centro", "direccion": "Madero 1", "municipio": "León",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/sucursales", map[string]any{"municipio": "Calvillo"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decodeBody[messageBody](t, rec).Errors, 2)
}

func TestBranchListings(t *testing.T) {
	a := newTestAPI(t, Deps{})
	a.create("/api/sucursales", map[string]any{"nombre": "Zaragoza", "direccion": "A", "municipio": "Jesús María"})
	a.create("/api/sucursales", map[string]any{"nombre": "Alameda", "direccion": "B", "municipio": "Calvillo"})
	a.create("/api/sucursales", map[string]any{"nombre": "Bosques", "direccion": "C", "municipio": "Jesús María"})

	all := decodeBody[[]model.Branch](t, a.do(http.MethodGet, "/api/sucursales", nil))
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Alameda", "Bosques", "Zaragoza"}, []string{all[0].Name, all[1].Name, all[2].Name})

	rec := a.do(http.MethodGet, "/api/sucursales/municipio/Jes%C3%BAs%20Mar%C3%ADa", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	inJM := decodeBody[[]model.Branch](t, rec)
	require.Len(t, inJM, 2)
	assert.Equal(t, "Bosques", inJM[0].Name)

	rec = a.do(http.MethodGet, "/api/sucursales/municipio/Monterrey", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodGet, "/api/municipios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]string](t, rec), 11)
}

func newModelResidence(a *testAPI, folio string) string {
	m := a.create("/api/modelos-residencia", map[string]any{
		"terreno": "200", "metrosconstruccion": "150", "niveles": "2", "cuartos": "3",
		"folio": folio, "partida": "P-1", "direccionDicabi": "Dicabi 1",
		"longitud": "-102.29", "latitud": "21.88", "residencial_idresidencial": "R1",
	})
	return m["_id"].(string)
}

func TestResidenceHourRules(t *testing.T) {
	notifier := &fakeNotifier{}
	a := newTestAPI(t, Deps{Notifier: notifier})
	modelID := newModelResidence(a, "F-1")

	rec := a.do(http.MethodPost, "/api/residencias", map[string]any{"estatus": "Cita", "modelo_idmodelo": modelID})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `La hora es requerida cuando el estatus es "Cita"`, decodeBody[messageBody](t, rec).Message)

	rec = a.do(http.MethodPost, "/api/residencias", map[string]any{"estatus": "Cita", "hora": "25:61", "modelo_idmodelo": modelID})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	sold := a.create("/api/residencias", map[string]any{"estatus": "Vendido", "hora": "10:00", "modelo_idmodelo": modelID})
	assert.NotContains(t, sold, "hora")
	assert.Empty(t, notifier.calls)

	appt := a.create("/api/residencias", map[string]any{"estatus": "Cita", "hora": "16:30", "modelo_idmodelo": modelID})
	assert.Equal(t, "16:30", appt["hora"])
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "16:30", notifier.calls[0].Hour)

	rec = a.do(http.MethodPut, "/api/residencias/"+appt["_id"].(string), map[string]any{
		"estatus": "Vendido", "hora": "16:30", "modelo_idmodelo": modelID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Vendido", updated["estatus"])
	assert.NotContains(t, updated, "hora")

	rec = a.do(http.MethodGet, "/api/residencias/"+appt["_id"].(string), nil)
	assert.NotContains(t, decodeBody[map[string]any](t, rec), "hora")
}

func TestResidencePopulatesModel(t *testing.T) {
	a := newTestAPI(t, Deps{})
	modelID := newModelResidence(a, "F-1")

	res := a.create("/api/residencias", map[string]any{"modelo_idmodelo": modelID})
	assert.Equal(t, "Libre", res["estatus"])
	populated, ok := res["modelo_idmodelo"].(map[string]any)
	require.True(t, ok, "model should be embedded: %v", res["modelo_idmodelo"])
	assert.Equal(t, "F-1", populated["folio"])
	assert.Equal(t, 3.0, populated["cuartos"])

	// Writing the model drops it from the cache.
	rec := a.do(http.MethodPut, "/api/modelos-residencia/"+modelID, map[string]any{
		"terreno": "200", "metrosconstruccion": "150", "niveles": "2", "cuartos": 4,
		"folio": "F-2", "partida": "P-1", "direccionDicabi": "Dicabi 1",
		"longitud": "-102.29", "latitud": "21.88", "residencial_idresidencial": "R1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/residencias/"+res["_id"].(string), nil)
	got := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "F-2", got["modelo_idmodelo"].(map[string]any)["folio"])

	rec = a.do(http.MethodDelete, "/api/modelos-residencia/"+modelID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeBody[[]map[string]any](t, a.do(http.MethodGet, "/api/residencias", nil))
	require.Len(t, list, 1)
	assert.Nil(t, list[0]["modelo_idmodelo"])
}

func TestResidenceByStatus(t *testing.T) {
	a := newTestAPI(t, Deps{})
	modelID := newModelResidence(a, "F-1")
	a.create("/api/residencias", map[string]any{"estatus": "Cita", "hora": "17:00", "modelo_idmodelo": modelID})
	a.create("/api/residencias", map[string]any{"estatus": "Cita", "hora": "9:15", "modelo_idmodelo": modelID})
	a.create("/api/residencias", map[string]any{"estatus": "Libre", "modelo_idmodelo": modelID})

	rec := a.do(http.MethodGet, "/api/residencias/estatus/Cita", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	appts := decodeBody[[]map[string]any](t, rec)
	require.Len(t, appts, 2)
	assert.Equal(t, "09:15", appts[0]["hora"])
	assert.Equal(t, "17:00", appts[1]["hora"])

	rec = a.do(http.MethodGet, "/api/residencias?estatus=Libre", nil)
	assert.Len(t, decodeBody[[]map[string]any](t, rec), 1)

	rec = a.do(http.MethodGet, "/api/residencias/estatus/Apartado", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, []any{"Libre", "Cita", "Vendido"}, body["estatusValidos"])
}

func TestResidenceNotifierFailureDoesNotFailRequest(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	a := newTestAPI(t, Deps{Notifier: notifier})
	modelID := newModelResidence(a, "F-1")
	res := a.create("/api/residencias", map[string]any{"estatus": "Cita", "hora": "12:00", "modelo_idmodelo": modelID})
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, res["_id"], notifier.calls[0].ID.Hex())
}

func TestUpdateReplacesDocument(t *testing.T) {
	a := newTestAPI(t, Deps{})
	sub := a.create("/api/lotificaciones", map[string]any{
		"nombre": "Los Pinos", "sucursal_idsucursal": "S1", "descripcion": "Primera etapa",
	})
	id := sub["_id"].(string)

	time.Sleep(2 * time.Millisecond)
	rec := a.do(http.MethodPut, "/api/lotificaciones/"+id, map[string]any{
		"nombre": "Los Pinos II", "sucursal_idsucursal": "S1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "Los Pinos II", updated["nombre"])
	assert.NotContains(t, updated, "descripcion", "update overwrites, it does not patch")
	assert.Equal(t, sub["createdAt"], updated["createdAt"])
	assert.NotEqual(t, sub["updatedAt"], updated["updatedAt"])

	fetched := decodeBody[map[string]any](t, a.do(http.MethodGet, "/api/lotificaciones/"+id, nil))
	assert.Equal(t, updated, fetched)
}

func TestNotFoundAndMalformedIDs(t *testing.T) {
	a := newTestAPI(t, Deps{})
	missing := primitive.NewObjectID().Hex()

	for _, path := range []string{
		"/api/apartamentos/", "/api/lotes/", "/api/lotificaciones/", "/api/edificios/",
		"/api/modelos-apartamento/", "/api/modelos-residencia/", "/api/residencias/",
		"/api/residenciales/", "/api/sucursales/",
	} {
		rec := a.do(http.MethodDelete, path+missing, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)

		rec = a.do(http.MethodGet, path+missing, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)

		rec = a.do(http.MethodGet, path+"abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	rec := a.do(http.MethodPut, "/api/edificios/"+missing, map[string]any{"nombre": "Torre A", "sucursal_idsucursal": "S1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Edificio no encontrado", decodeBody[messageBody](t, rec).Message)

	rec = a.do(http.MethodDelete, "/api/sucursales/"+missing, nil)
	assert.Equal(t, "Sucursal no encontrada", decodeBody[messageBody](t, rec).Message)

	rec = a.do(http.MethodGet, "/api/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectsMalformedBodies(t *testing.T) {
	a := newTestAPI(t, Deps{})

	rec := a.do(http.MethodPost, "/api/edificios", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrEmptyBody.Error(), decodeBody[messageBody](t, rec).Message)

	rec = a.do(http.MethodPost, "/api/edificios", "{nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/residencias", map[string]any{"modelo_idmodelo": "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/apartamentos", "[]")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrNotObject.Error(), decodeBody[messageBody](t, rec).Message)
}

func TestWrongNumberTypeReportsField(t *testing.T) {
	a := newTestAPI(t, Deps{})

	for _, price := range []any{"abc", true} {
		rec := a.do(http.MethodPost, "/api/apartamentos", map[string]any{
			"precioventa": price, "modeloApartamento_idmodelo": "A1",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody[messageBody](t, rec)
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "precioventa", body.Errors[0].Field)
		assert.Contains(t, body.Message, "no es un número válido")
	}
}

func TestRoundTripForEveryResource(t *testing.T) {
	a := newTestAPI(t, Deps{})
	bodies := map[string]map[string]any{
		"/api/lotes": {
			"nombre": "L-1", "folio": "F", "partida": "P", "direccion": "Calle 1", "longitud": "-102.2",
			"latitud": "21.8", "imagen": "l.jpg", "servicios": "agua", "descripcion": "esquina",
			"precioventa": 350000, "lotificacion_idotificacion": "LT1",
		},
		"/api/edificios":      {"nombre": "Torre A", "sucursal_idsucursal": "S1"},
		"/api/residenciales":  {"nombre": "Villas", "sucursal_idsucursal": "S1"},
		"/api/lotificaciones": {"nombre": "Los Pinos", "sucursal_idsucursal": "S1"},
		"/api/modelos-apartamento": {
			"metrosconstruccion": "90", "niveles": "1", "cuartos": 2, "baños": 1, "folio": "F",
			"partida": "P", "direccionDicabi": "D", "longitud": "1", "latitud": "2", "numero": "101",
			"edificio_idedificio": "E1", "edificio_sucursal_idsucursal": "S1",
		},
	}
	for path, body := range bodies {
		created := a.create(path, body)
		for k, v := range body {
			want := v
			if n, ok := v.(int); ok {
				want = float64(n)
			}
			assert.Equal(t, want, created[k], "%s %s", path, k)
		}
		fetched := decodeBody[map[string]any](t, a.do(http.MethodGet, path+"/"+created["_id"].(string), nil))
		assert.Equal(t, created, fetched, path)

		list := decodeBody[[]map[string]any](t, a.do(http.MethodGet, path, nil))
		assert.Len(t, list, 1, path)
	}
}

func TestSuggestDescription(t *testing.T) {
	a := newTestAPI(t, Deps{})
	apt := a.create("/api/apartamentos", map[string]any{"precioventa": 1, "modeloApartamento_idmodelo": "A1"})
	rec := a.do(http.MethodPost, "/api/apartamentos/"+apt["_id"].(string)+"/descripcion-sugerida", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	writer := &fakeWriter{text: "Luminoso apartamento"}
	a = newTestAPI(t, Deps{Writer: writer})
	apt = a.create("/api/apartamentos", map[string]any{"precioventa": 2500000, "modeloApartamento_idmodelo": "Loft"})
	rec = a.do(http.MethodPost, "/api/apartamentos/"+apt["_id"].(string)+"/descripcion-sugerida", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Luminoso apartamento", decodeBody[suggestionBody](t, rec).Description)
	assert.Contains(t, writer.facts, "Loft")
	assert.Contains(t, writer.facts, "2500000")

	rec = a.do(http.MethodPost, "/api/lotes/"+primitive.NewObjectID().Hex()+"/descripcion-sugerida", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	writer.err = errors.New("quota")
	rec = a.do(http.MethodPost, "/api/apartamentos/"+apt["_id"].(string)+"/descripcion-sugerida", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMiddlewareTraceIDAndCORS(t *testing.T) {
	a := newTestAPI(t, Deps{})

	rec := a.do(http.MethodGet, "/api/apartamentos", nil)
	assert.Len(t, rec.Header().Get(traceHeader), 36)

	traceID := "5f0c9a4e-3d1b-4c8e-9a63-2b7f1d2e4c10"
	req := httptest.NewRequest(http.MethodGet, "/api/apartamentos", nil)
	req.Header.Set(traceHeader, traceID)
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Equal(t, traceID, rec.Header().Get(traceHeader))

	req = httptest.NewRequest(http.MethodOptions, "/api/apartamentos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := bearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "bearer abc.def")
	token, ok := bearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	_, ok = bearerToken(req)
	assert.False(t, ok)
}
