// Package api provides the HTTP handlers for the game and sample collection.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ayusman/shifumi/internal/app"
	"github.com/ayusman/shifumi/internal/game"
	"github.com/ayusman/shifumi/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrInvalidTransition), errors.Is(err, app.ErrNoPreview):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidRounds):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrNotReady), errors.Is(err, app.ErrNoStore):
		return http.StatusServiceUnavailable
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err with its mapped status. Internal errors are
// logged and hidden from the client.
func writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("api: %v", err)
		writeError(w, status, "Internal error")
		return
	}
	writeError(w, status, err.Error())
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
