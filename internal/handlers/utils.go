package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/war/internal/models"
	"github.com/sirupsen/logrus"
)

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps store and engine errors to HTTP statuses. notFound is the
// message sent for models.ErrNotFound.
func writeError(w http.ResponseWriter, logger *logrus.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, notFound, http.StatusNotFound)
	case errors.Is(err, models.ErrConflict):
		http.Error(w, "User already exists!", http.StatusConflict)
	case errors.Is(err, models.ErrBadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Errorf("request failed: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// gameKey parses the {key} route parameter.
func gameKey(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "key"))
	return id, err == nil
}
