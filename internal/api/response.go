// Package api contains the HTTP layer: routing, request binding and
// validation, and response formatting.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ─── Error envelope ───────────────────────────────────────────────────────────

// errorEnvelope is the shape of every non-2xx response body.
type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []fieldError `json:"fields,omitempty"`
}

// fieldError carries field-level detail for validation failures.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// writeJSON serialises v into the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; logging is all that's left.
		log.Error().Err(err).Msg("write response")
	}
}

// ok writes a 200 response with the payload as the body.
func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// badRequest writes a 400 error response.
func badRequest(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

// validationError writes a 400 response carrying per-field detail.
func validationError(w http.ResponseWriter, fields []fieldError) {
	writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: apiError{
		Code:    "VALIDATION_ERROR",
		Message: "request body failed validation",
		Fields:  fields,
	}})
}
