package utils

import (
	"encoding/json"
	"net/http"

	"marketplace/apperr"
)

// WriteJSON writes payload as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// WriteSuccess writes a success envelope, optionally merging extra fields.
func WriteSuccess(w http.ResponseWriter, message string, extra map[string]any) {
	body := map[string]any{
		"status":  "success",
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	WriteJSON(w, http.StatusOK, body)
}

// WriteError maps a service error to an HTTP status and a structured
// error body. Internal causes are never exposed to the client.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if kind, ok := apperr.KindOf(err); ok {
		switch kind {
		case apperr.Unauthenticated:
			status = http.StatusUnauthorized
		case apperr.NotFound:
			status = http.StatusNotFound
		case apperr.InvalidState:
			status = http.StatusBadRequest
		case apperr.BackendUnavailable:
			status = http.StatusServiceUnavailable
		case apperr.ProviderError:
			status = http.StatusBadGateway
		}
	}
	WriteJSON(w, status, map[string]any{
		"status":  "error",
		"message": apperr.Message(err),
	})
}
