// Package repository declares the narrow storage contracts the vault depends on.
//
// ONE INTERFACE PER RECORD KIND:
// Services and views only ever see these interfaces. There are three
// implementations: repository/sqlite (local file or ":memory:"),
// repository/postgres (the hosted Supabase database) and client (the vault's
// own HTTP API). Tests swap in small in-memory fakes. Nothing above this package knows which
// one it is talking to.
//
// Every method returns either data or an error; there is no partial success
// and nothing here is transactional across record kinds.
package repository

import (
	"context"

	"github.com/sakif/project-vault/internal/model"
)

// ListOptions controls ordering and paging of a list call.
// The zero value lists newest first (id descending) with no limit.
type ListOptions struct {
	Ascending bool
	Limit     int
	Offset    int
}

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context, opts ListOptions) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	// UpdateSnippet replaces code_snippet only; other columns are untouched.
	UpdateSnippet(ctx context.Context, id, code string) error
	Delete(ctx context.Context, id string) error
}

type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	GetByID(ctx context.Context, id string) (*model.Note, error)
	List(ctx context.Context, opts ListOptions) ([]model.Note, error)
	Update(ctx context.Context, note *model.Note) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}
