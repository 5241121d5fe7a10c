package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/repository"
)

var _ repository.ProjectRepository = (*ProjectRepo)(nil)

// ProjectRepo is the projects table. Get one from DB.Projects.
type ProjectRepo struct {
	conn *sql.DB
}

// Projects returns the project repository backed by this database.
func (db *DB) Projects() *ProjectRepo {
	return &ProjectRepo{conn: db.conn}
}

const projectColumns = `id, title, description, link, preview_image, tags, code_snippet, size, created_at, updated_at`

// Create inserts a new project. The ID is generated here, not by the caller:
// xid values start with a timestamp, so "ORDER BY id DESC" lists the newest
// project first, which is the gallery's order.
func (r *ProjectRepo) Create(ctx context.Context, project *model.Project) error {
	tags, err := encodeTags(project.Tags)
	if err != nil {
		return err
	}

	project.ID = xid.New().String()
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.Title,
		project.Description,
		project.Link,
		project.PreviewImage,
		tags,
		project.CodeSnippet,
		string(project.Size),
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}

	return nil
}

// GetByID returns apperror.NotFound when no row matches.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return project, nil
}

func (r *ProjectRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Project, error) {
	limit, offset := limitArgs(opts.Limit, opts.Offset)

	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects `+orderClause(opts.Ascending)+` LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}

	return projects, nil
}

// Update overwrites every editable column of an existing project.
func (r *ProjectRepo) Update(ctx context.Context, project *model.Project) error {
	tags, err := encodeTags(project.Tags)
	if err != nil {
		return err
	}
	project.UpdatedAt = time.Now().UTC()

	result, err := r.conn.ExecContext(ctx,
		`UPDATE projects
		 SET title = ?, description = ?, link = ?, preview_image = ?, tags = ?,
		     code_snippet = ?, size = ?, updated_at = ?
		 WHERE id = ?`,
		project.Title,
		project.Description,
		project.Link,
		project.PreviewImage,
		tags,
		project.CodeSnippet,
		string(project.Size),
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}
	return expectOneRow(result, "project", project.ID)
}

func (r *ProjectRepo) UpdateSnippet(ctx context.Context, id, code string) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE projects SET code_snippet = ?, updated_at = ? WHERE id = ?`,
		code, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet of project %s: %w", id, err)
	}
	return expectOneRow(result, "project", id)
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}
	return expectOneRow(result, "project", id)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*model.Project, error) {
	var (
		p    model.Project
		tags string
		size string
	)
	if err := s.Scan(
		&p.ID, &p.Title, &p.Description, &p.Link, &p.PreviewImage,
		&tags, &p.CodeSnippet, &size, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Size = model.Size(size)

	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of project %s: %w", p.ID, err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding tags: %w", err)
	}
	return string(b), nil
}

// expectOneRow turns "zero rows affected" into apperror.NotFound so UPDATE and
// DELETE on a missing id behave like GetByID.
func expectOneRow(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
