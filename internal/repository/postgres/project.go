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

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

type ProjectRepo struct {
	conn  *sql.DB
	table string
}

func (db *DB) Projects() *ProjectRepo {
	return &ProjectRepo{conn: db.conn, table: db.tables.Projects}
}

const projectColumns = `id, title, description, link, preview_image, tags, code_snippet, size, created_at, updated_at`

func (r *ProjectRepo) Create(ctx context.Context, project *model.Project) error {
	project.ID = xid.New().String()
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.table, projectColumns)

	_, err := r.conn.ExecContext(ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.Link,
		project.PreviewImage,
		textArray(project.Tags),
		project.CodeSnippet,
		string(project.Size),
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("project", project.ID)
		}
		return fmt.Errorf("postgres: creating project: %w", err)
	}
	return nil
}

func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, projectColumns, r.table)

	project, err := scanProject(r.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("postgres: getting project %s: %w", id, err)
	}
	return project, nil
}

func (r *ProjectRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Project, error) {
	limit, offset := limitArgs(opts.Limit, opts.Offset)
	query := fmt.Sprintf(`SELECT %s FROM %s %s LIMIT $1 OFFSET $2`,
		projectColumns, r.table, orderClause(opts.Ascending))

	rows, err := r.conn.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectRepo) Update(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now().UTC()

	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, link = $3, preview_image = $4, tags = $5,
		    code_snippet = $6, size = $7, updated_at = $8
		WHERE id = $9
	`, r.table)

	result, err := r.conn.ExecContext(ctx, query,
		project.Title,
		project.Description,
		project.Link,
		project.PreviewImage,
		textArray(project.Tags),
		project.CodeSnippet,
		string(project.Size),
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating project %s: %w", project.ID, err)
	}
	return expectOneRow(result, "project", project.ID)
}

func (r *ProjectRepo) UpdateSnippet(ctx context.Context, id, code string) error {
	query := fmt.Sprintf(`UPDATE %s SET code_snippet = $1, updated_at = $2 WHERE id = $3`, r.table)

	result, err := r.conn.ExecContext(ctx, query, code, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("postgres: updating snippet of project %s: %w", id, err)
	}
	return expectOneRow(result, "project", id)
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	result, err := r.conn.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres: deleting project %s: %w", id, err)
	}
	return expectOneRow(result, "project", id)
}

func scanProject(s scanner) (*model.Project, error) {
	var (
		p    model.Project
		tags textArray
		size string
	)
	if err := s.Scan(
		&p.ID, &p.Title, &p.Description, &p.Link, &p.PreviewImage,
		&tags, &p.CodeSnippet, &size, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Tags = []string(tags)
	p.Size = model.Size(size)
	return &p, nil
}
