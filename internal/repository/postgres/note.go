package postgres

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

type NoteRepo struct {
	conn  *sql.DB
	table string
}

func (db *DB) Notes() *NoteRepo {
	return &NoteRepo{conn: db.conn, table: db.tables.Notes}
}

const noteColumns = `id, title, content, category, created_at, updated_at`

func (r *NoteRepo) Create(ctx context.Context, note *model.Note) error {
	note.ID = xid.New().String()
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6)`, r.table, noteColumns)

	_, err := r.conn.ExecContext(ctx, query,
		note.ID, note.Title, note.Content, string(note.Category), note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: creating note: %w", err)
	}
	return nil
}

func (r *NoteRepo) GetByID(ctx context.Context, id string) (*model.Note, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, noteColumns, r.table)

	note, err := scanNote(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("note", id)
		}
		return nil, fmt.Errorf("postgres: getting note %s: %w", id, err)
	}
	return note, nil
}

func (r *NoteRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Note, error) {
	limit, offset := limitArgs(opts.Limit, opts.Offset)
	query := fmt.Sprintf(`SELECT %s FROM %s %s LIMIT $1 OFFSET $2`,
		noteColumns, r.table, orderClause(opts.Ascending))

	rows, err := r.conn.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning note row: %w", err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepo) Update(ctx context.Context, note *model.Note) error {
	note.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf(`UPDATE %s SET title = $1, content = $2, category = $3, updated_at = $4 WHERE id = $5`, r.table)

	result, err := r.conn.ExecContext(ctx, query,
		note.Title, note.Content, string(note.Category), note.UpdatedAt, note.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating note %s: %w", note.ID, err)
	}
	return expectOneRow(result, "note", note.ID)
}

func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	result, err := r.conn.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting note %s: %w", id, err)
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
