package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/repository"
)

var _ repository.NoteRepository = (*NoteRepo)(nil)

// NoteRepo is the notes table. Get one from DB.Notes.
type NoteRepo struct {
	conn *sql.DB
}

func (db *DB) Notes() *NoteRepo {
	return &NoteRepo{conn: db.conn}
}

const noteColumns = `id, title, content, category, created_at, updated_at`

func (r *NoteRepo) Create(ctx context.Context, note *model.Note) error {
	note.ID = xid.New().String()
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		note.ID, note.Title, note.Content, string(note.Category), note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating note: %w", err)
	}
	return nil
}

func (r *NoteRepo) GetByID(ctx context.Context, id string) (*model.Note, error) {
	note, err := scanNote(r.conn.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("note", id)
		}
		return nil, fmt.Errorf("sqlite: getting note %s: %w", id, err)
	}
	return note, nil
}

func (r *NoteRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Note, error) {
	limit, offset := limitArgs(opts.Limit, opts.Offset)

	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes `+orderClause(opts.Ascending)+` LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning note row: %w", err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepo) Update(ctx context.Context, note *model.Note) error {
	note.UpdatedAt = time.Now().UTC()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, category = ?, updated_at = ? WHERE id = ?`,
		note.Title, note.Content, string(note.Category), note.UpdatedAt, note.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating note %s: %w", note.ID, err)
	}
	return expectOneRow(result, "note", note.ID)
}

func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting note %s: %w", id, err)
	}
	return expectOneRow(result, "note", id)
}

func scanNote(s scanner) (*model.Note, error) {
	var (
		n        model.Note
		category string
	)
	if err := s.Scan(&n.ID, &n.Title, &n.Content, &category, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.Category = model.Category(category)
	return &n, nil
}
