package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dicabi/inmobiliaria/model"
)

type messageBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Errors  model.FieldErrors `json:"errors,omitempty"`
	Data    any               `json:"data,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func writeJSONError(w http.ResponseWriter, code int, message string, err error) {
	body := messageBody{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	respondWithJSON(w, code, body)
}

// writeInputError reports a rejected request body. Validation failures carry
// the joined message plus the per-field list.
func writeInputError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		respondWithJSON(w, http.StatusBadRequest, messageBody{Message: verr.Error(), Errors: verr.Fields})
		return
	}
	respondWithJSON(w, http.StatusBadRequest, messageBody{Message: err.Error()})
}
