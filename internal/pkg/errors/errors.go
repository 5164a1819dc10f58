package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Sentinel errors returned by domain services. Handlers translate them into
// HTTP responses via WriteServiceError.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid input")
	ErrConflict  = errors.New("conflict")
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

// WriteServiceError maps a domain error onto the HTTP envelope. Unknown
// errors become a 500 without leaking the underlying message.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		WriteError(w, http.StatusForbidden, ErrCodeForbidden, err.Error(), nil)
	case errors.Is(err, ErrInvalid):
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), nil)
	case errors.Is(err, ErrConflict):
		WriteError(w, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal error", nil)
	}
}
