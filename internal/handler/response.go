package handler

// RESPONSE HELPERS:
// Every JSON endpoint answers through writeJSON / writeError so the API has
// one success shape and one error shape:
//
//	{"error": "not_found", "message": "project not found with id abc123"}
//
// Page handlers reuse statusFor to pick the status of a re-rendered form.

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/project-vault/internal/apperror"
)

// maxBodyBytes caps JSON request bodies. A project with a maximal snippet
// fits comfortably.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE the body; once Encode writes, any
// later header change is silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps a domain error to an HTTP status and a machine-readable kind.
//
// errors.Is walks the whole chain, so a service error such as
//
//	fmt.Errorf("creating project: %w", apperror.ValidationFailed(...))
//
// still maps to 400.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError maps err to a status and sends the standard error body.
//
// Only *AppError messages reach the client. Anything else (a driver error
// with SQL in it, a file path) becomes the generic "remote operation failed".
func writeError(w http.ResponseWriter, err error) {
	status, kind := statusFor(err)
	writeJSON(w, status, ErrorResponse{
		Error:   kind,
		Message: apperror.Message(err),
	})
}

// decodeJSON reads a single JSON object from the request body into dst.
// Unknown fields are rejected so a typo in a client surfaces as a 400
// instead of a silently ignored field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}
