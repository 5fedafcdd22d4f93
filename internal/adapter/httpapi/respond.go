package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/eslsoft/drillnet/internal/entity"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors onto HTTP statuses. Anything unmapped is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrInvalidUserID),
		errors.Is(err, entity.ErrInvalidSessionID),
		errors.Is(err, entity.ErrInvalidWordText),
		errors.Is(err, entity.ErrUnsupportedLanguage):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrExerciseNotFound),
		errors.Is(err, entity.ErrNoPreloadedEntry):
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}
