package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dicabi/inmobiliaria/db"
	"github.com/dicabi/inmobiliaria/logger"
	"github.com/dicabi/inmobiliaria/model"
)

type document[T any] interface {
	*T
	model.Document
}

type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Resource exposes the five CRUD operations of one entity. Everything that
// differs between entities is configuration.
type Resource[T any, PT document[T]] struct {
	// Path is the URL segment under /api, e.g. "apartamentos".
	Path     string
	Label    string
	Feminine bool
	Store    db.Store[T]

	// Filters maps query parameters to document fields matched by equality.
	Filters      map[string]string
	SearchFields []string
	Sort         []db.SortKey

	// Checks run on every create and update before the document validator.
	Checks      []func(PT) *model.ValidationError
	Present     func(ctx context.Context, doc *T) (any, error)
	AfterSave   func(ctx context.Context, doc *T)
	AfterDelete func(ctx context.Context, doc *T)

	Routes []Route
	Now    func() time.Time
}

func (rs *Resource[T, PT]) Register(r *mux.Router) {
	sub := r.PathPrefix("/" + rs.Path).Subrouter()
	for _, rt := range rs.Routes {
		sub.HandleFunc(rt.Path, rt.Handler).Methods(rt.Method)
	}
	sub.HandleFunc("", rs.Create).Methods(http.MethodPost)
	sub.HandleFunc("", rs.List).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", rs.Get).Methods(http.MethodGet)
	sub.HandleFunc("/{id}", rs.Update).Methods(http.MethodPut)
	sub.HandleFunc("/{id}", rs.Delete).Methods(http.MethodDelete)
}

func (rs *Resource[T, PT]) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := model.ParseAndValidate[T, PT](r.Body, rs.Checks...)
	if err != nil {
		rs.log(ctx).Debug("rejected create", slog.String("error", err.Error()))
		writeInputError(w, err)
		return
	}

	meta := doc.Base()
	*meta = model.Meta{}
	meta.Stamp(rs.now())

	if err := rs.Store.Insert(ctx, (*T)(doc)); err != nil {
		rs.log(ctx).Error("insert failed", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadRequest, "Error al crear "+rs.noun(), err)
		return
	}
	rs.log(ctx).Info("document created", slog.String("id", meta.ID.Hex()))

	if rs.AfterSave != nil {
		rs.AfterSave(ctx, (*T)(doc))
	}
	rs.respondDoc(w, r, http.StatusCreated, (*T)(doc))
}

func (rs *Resource[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := db.Query{
		Equals:       map[string]any{},
		Search:       strings.TrimSpace(params.Get("search")),
		SearchFields: rs.SearchFields,
		Sort:         rs.sort(),
	}
	for param, field := range rs.Filters {
		if v := strings.TrimSpace(params.Get(param)); v != "" {
			q.Equals[field] = v
		}
	}
	rs.respondList(w, r, q)
}

// ListBy serves listings narrowed by a path variable, rejecting values that
// fail valid with the response written by invalid.
func (rs *Resource[T, PT]) ListBy(param, field string, valid func(string) bool, sort []db.SortKey, invalid func(w http.ResponseWriter)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value := mux.Vars(r)[param]
		if !valid(value) {
			invalid(w)
			return
		}
		rs.respondList(w, r, db.Query{Equals: map[string]any{field: value}, Sort: sort})
	}
}

func (rs *Resource[T, PT]) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := rs.parseID(w, r)
	if !ok {
		return
	}

	doc, err := rs.Store.Get(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, rs.notFound(), nil)
		return
	}
	if err != nil {
		rs.log(ctx).Error("get failed", slog.String("id", id.Hex()), slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadRequest, "Error al buscar "+rs.noun(), err)
		return
	}
	rs.respondDoc(w, r, http.StatusOK, doc)
}

// Update replaces every mutable field of the document; createdAt survives.
func (rs *Resource[T, PT]) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := rs.parseID(w, r)
	if !ok {
		return
	}

	doc, err := model.ParseAndValidate[T, PT](r.Body, rs.Checks...)
	if err != nil {
		rs.log(ctx).Debug("rejected update", slog.String("id", id.Hex()), slog.String("error", err.Error()))
		writeInputError(w, err)
		return
	}

	existing, err := rs.Store.Get(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, rs.notFound(), nil)
		return
	}
	if err != nil {
		rs.log(ctx).Error("get before update failed", slog.String("id", id.Hex()), slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadRequest, "Error al actualizar "+rs.noun(), err)
		return
	}

	meta := doc.Base()
	*meta = model.Meta{ID: id, CreatedAt: PT(existing).Base().CreatedAt}
	meta.Stamp(rs.now())

	err = rs.Store.Replace(ctx, id, (*T)(doc))
	if errors.Is(err, db.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, rs.notFound(), nil)
		return
	}
	if err != nil {
		rs.log(ctx).Error("replace failed", slog.String("id", id.Hex()), slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadRequest, "Error al actualizar "+rs.noun(), err)
		return
	}
	rs.log(ctx).Info("document updated", slog.String("id", id.Hex()))

	if rs.AfterSave != nil {
		rs.AfterSave(ctx, (*T)(doc))
	}
	rs.respondDoc(w, r, http.StatusOK, (*T)(doc))
}

func (rs *Resource[T, PT]) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := rs.parseID(w, r)
	if !ok {
		return
	}

	doc, err := rs.Store.Delete(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, rs.notFound(), nil)
		return
	}
	if err != nil {
		rs.log(ctx).Error("delete failed", slog.String("id", id.Hex()), slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadRequest, "Error al eliminar "+rs.noun(), err)
		return
	}
	rs.log(ctx).Info("document deleted", slog.String("id", id.Hex()))

	if rs.AfterDelete != nil {
		rs.AfterDelete(ctx, doc)
	}
	respondWithJSON(w, http.StatusOK, messageBody{
		Message: fmt.Sprintf("%s %s correctamente", rs.Label, rs.gendered("eliminad")),
		Data:    doc,
	})
}

func (rs *Resource[T, PT]) respondList(w http.ResponseWriter, r *http.Request, q db.Query) {
	ctx := r.Context()
	docs, err := rs.Store.Find(ctx, q)
	if err != nil {
		rs.log(ctx).Error("find failed", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadRequest, "Error al obtener "+rs.Path, err)
		return
	}

	out := make([]any, 0, len(docs))
	for i := range docs {
		v, err := rs.present(ctx, &docs[i])
		if err != nil {
			rs.log(ctx).Error("present failed", slog.String("error", err.Error()))
			writeJSONError(w, http.StatusBadRequest, "Error al obtener "+rs.Path, err)
			return
		}
		out = append(out, v)
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (rs *Resource[T, PT]) respondDoc(w http.ResponseWriter, r *http.Request, code int, doc *T) {
	v, err := rs.present(r.Context(), doc)
	if err != nil {
		rs.log(r.Context()).Error("present failed", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusBadRequest, "Error al buscar "+rs.noun(), err)
		return
	}
	respondWithJSON(w, code, v)
}

func (rs *Resource[T, PT]) present(ctx context.Context, doc *T) (any, error) {
	if rs.Present == nil {
		return doc, nil
	}
	return rs.Present(ctx, doc)
}

func (rs *Resource[T, PT]) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := db.ParseID(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Id de "+strings.ToLower(rs.Label)+" no válido", err)
		return id, false
	}
	return id, true
}

func (rs *Resource[T, PT]) log(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx).With(slog.String("resource", rs.Path))
}

func (rs *Resource[T, PT]) now() time.Time {
	if rs.Now != nil {
		return rs.Now()
	}
	return time.Now()
}

func (rs *Resource[T, PT]) sort() []db.SortKey {
	if rs.Sort != nil {
		return rs.Sort
	}
	return db.NewestFirst
}

func (rs *Resource[T, PT]) gendered(stem string) string {
	if rs.Feminine {
		return stem + "a"
	}
	return stem + "o"
}

func (rs *Resource[T, PT]) notFound() string {
	return fmt.Sprintf("%s no %s", rs.Label, rs.gendered("encontrad"))
}

// noun is the lower-cased label with its article, e.g. "la sucursal".
func (rs *Resource[T, PT]) noun() string {
	article := "el"
	if rs.Feminine {
		article = "la"
	}
	return article + " " + strings.ToLower(rs.Label)
}
