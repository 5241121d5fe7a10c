package apperror

import (
	"errors"
	"fmt"
	"testing"
)

// TABLE-DRIVEN TESTS:
// Each case is one struct in the slice; t.Run gives every case its own name
// in the test output, so a failure points straight at the offending row.

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("project", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("title", "title is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("sign in first"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Remote wraps ErrRemote through fmt.Errorf",
			err:       fmt.Errorf("listing notes: %w", Remote("connection refused")),
			target:    ErrRemote,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("note", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Remote does NOT match ErrNotFound",
			err:       Remote("boom"),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("project", "abc123"),
			wantMessage: "project not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("title", "title is required"),
			wantMessage: "title is required",
		},
		{
			name:        "Conflict message includes resource and id",
			err:         Conflict("note", "abc123"),
			wantMessage: "note conflict with id abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	wrapped := fmt.Errorf("creating note: %w", ValidationFailed("title", "title is required"))
	if got := Message(wrapped); got != "title is required" {
		t.Errorf("Message() = %q, want the AppError message", got)
	}

	// Plain errors may carry SQL or file paths; they must not reach a toast.
	if got := Message(errors.New("sqlite: disk I/O error")); got != "remote operation failed" {
		t.Errorf("Message() = %q, want generic text", got)
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("project", "abc123")
	if err.Unwrap() != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), ErrNotFound)
	}
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("size", "size must be small or large")
	if err.Field != "size" {
		t.Errorf("Field = %q, want %q", err.Field, "size")
	}
}
