// Package service holds the vault's business rules.
//
// THE LAYERS:
//
//	Handler / TUI  (HTTP, terminal)   → parse input, render output
//	Service        (this package)     → validate, normalize, log, announce
//	Repository     (sqlite, postgres, client) → read/write records
//
// Services take repository interfaces, never a concrete store, so the same
// ProjectService runs against SQLite in tests, Postgres in production and
// the HTTP client inside the terminal UI.
//
// After every successful mutation a service announces it on the change feed
// (ChangePublisher). Open pages listen and re-fetch their list; nothing is
// merged optimistically.
package service

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sakif/project-vault/internal/apperror"
)

// ChangePublisher is the part of the events broker the services need.
type ChangePublisher interface {
	PublishChange(topic, action, id string)
}

type nopPublisher struct{}

func (nopPublisher) PublishChange(string, string, string) {}

func publisherOrNop(p ChangePublisher) ChangePublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// validationError converts ozzo-validation's per-field error map into a
// single apperror for the first offending field (alphabetical, so the
// message is stable between runs).
func validationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.ValidationFailed("", err.Error())
	}

	fields := make([]string, 0, len(fieldErrs))
	for field := range fieldErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	field := fields[0]
	return apperror.ValidationFailed(field, field+": "+fieldErrs[field].Error())
}
