package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dicabi/inmobiliaria/db"
)

type DescriptionWriter interface {
	Suggest(ctx context.Context, facts string) (string, error)
}

type describable interface {
	Facts() string
}

type suggestionBody struct {
	Description string `json:"descripcion"`
}

// Suggest drafts a listing description for a stored document. The draft is
// returned to the caller and never persisted.
func (rs *Resource[T, PT]) Suggest(writer DescriptionWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if writer == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "Las sugerencias de descripción no están configuradas", nil)
			return
		}
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
			writeJSONError(w, http.StatusBadRequest, "Error al buscar "+rs.noun(), err)
			return
		}

		d, ok := any(PT(doc)).(describable)
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "Este recurso no admite sugerencias de descripción", nil)
			return
		}
		text, err := writer.Suggest(ctx, d.Facts())
		if err != nil {
			rs.log(ctx).Error("description suggestion failed", slog.String("id", id.Hex()), slog.String("error", err.Error()))
			writeJSONError(w, http.StatusBadGateway, "No se pudo generar la descripción", err)
			return
		}
		respondWithJSON(w, http.StatusOK, suggestionBody{Description: text})
	}
}
