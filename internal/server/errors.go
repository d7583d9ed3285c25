package server

import (
	"encoding/json"
	"net/http"

	"github.com/chiremba/chiremba/internal/report"
	errorslib "github.com/goliatone/go-errors"
)

// ErrorEnvelope is the standard error response format
type ErrorEnvelope struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information
type ErrorDetail struct {
	Code       string `json:"code"`        // HTTP status text
	ReasonCode string `json:"reason_code"` // error kind, stable across versions
	Message    string `json:"message"`     // short human-readable message
}

// WriteError writes err as a JSON envelope with a status derived from its kind.
// Wrapped detail never reaches the client
func WriteError(w http.ResponseWriter, err error) {
	ge := report.AsGoError(err)
	status := statusForError(ge)
	writeJSON(w, status, ErrorEnvelope{
		Error: ErrorDetail{
			Code:       http.StatusText(status),
			ReasonCode: ge.TextCode,
			Message:    ge.Message,
		},
	})
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryExternal:
		return http.StatusBadGateway
	case errorslib.CategoryOperation:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
