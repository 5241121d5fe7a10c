// Package apperror defines the error vocabulary shared by every layer of the vault.
//
// HOW ERRORS FLOW:
// Repositories and services return *AppError values that wrap one of the
// sentinels below. Handlers never inspect messages; they ask errors.Is() which
// sentinel is in the chain and pick a status code from that. The HTTP client
// does the reverse: it turns an error response back into the same sentinel, so
// a terminal client sees the same errors as the server would.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRemote is the one failure kind users see: the store call did not
	// succeed. It carries no retry or classification semantics.
	ErrRemote = errors.New("remote operation failed")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when no valid credentials were presented.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Remote wraps a failed store round trip. The message is whatever the store
// (or the vault server, for the HTTP client) reported.
func Remote(message string) *AppError {
	return &AppError{
		Err:     ErrRemote,
		Message: message,
	}
}

// Message returns the human-readable part of err for notifications.
// Non-AppError values collapse to a generic text so internals never leak
// into a toast.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "remote operation failed"
}
