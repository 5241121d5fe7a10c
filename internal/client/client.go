// Package client implements the repository interfaces against a running
// vault server's JSON API.
//
// WHY A THIRD STORE:
// The terminal UI should edit the same records the web pages show, without
// database credentials on the laptop. It takes a repository interface like
// every other consumer, and this package satisfies it by calling /api with a
// bearer token.
//
// ERRORS:
// Non-2xx answers are decoded from the server's {"error","message"} body back
// into the matching apperror sentinel (404 → ErrNotFound, 400 →
// ErrValidation, ...). Transport failures and 5xx become apperror.Remote. No
// call is retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/repository"
)

var (
	_ repository.ProjectRepository = (*ProjectRepo)(nil)
	_ repository.NoteRepository    = (*NoteRepo)(nil)
)

// Client talks to one vault server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Projects() *ProjectRepo { return &ProjectRepo{c: c} }

func (c *Client) Notes() *NoteRepo { return &NoteRepo{c: c} }

// do sends body (if non-nil) as JSON and decodes a 2xx answer into out (if
// non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return apperror.Remote(fmt.Sprintf("%s %s: %v", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Remote(fmt.Sprintf("decoding %s %s response: %v", method, path, err))
	}
	return nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decodeError(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)

	message := body.Message
	if message == "" {
		message = resp.Status
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		sentinel = apperror.ErrValidation
	case http.StatusUnauthorized:
		sentinel = apperror.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = apperror.ErrForbidden
	case http.StatusNotFound:
		sentinel = apperror.ErrNotFound
	case http.StatusConflict:
		sentinel = apperror.ErrConflict
	default:
		sentinel = apperror.ErrRemote
	}
	return &apperror.AppError{Err: sentinel, Message: message}
}

func listQuery(opts repository.ListOptions) string {
	if opts.Ascending {
		return "?order=asc"
	}
	return ""
}

// ProjectRepo is the /api/projects resource.
type ProjectRepo struct{ c *Client }

func (r *ProjectRepo) Create(ctx context.Context, project *model.Project) error {
	return r.c.do(ctx, http.MethodPost, "/api/projects", projectInput(project), project)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	if err := r.c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List ignores Limit/Offset: the API returns the whole collection.
func (r *ProjectRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.Project, error) {
	projects := []model.Project{}
	if err := r.c.do(ctx, http.MethodGet, "/api/projects"+listQuery(opts), nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepo) Update(ctx context.Context, project *model.Project) error {
	return r.c.do(ctx, http.MethodPut, "/api/projects/"+url.PathEscape(project.ID), projectInput(project), project)
}

func (r *ProjectRepo) UpdateSnippet(ctx context.Context, id, code string) error {
	return r.c.do(ctx, http.MethodPatch, "/api/projects/"+url.PathEscape(id)+"/snippet",
		model.SnippetPatch{CodeSnippet: code}, nil)
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil)
}

func projectInput(p *model.Project) model.ProjectInput {
	return model.ProjectInput{
		Title:        p.Title,
		Description:  p.Description,
		Link:         p.Link,
		PreviewImage: p.PreviewImage,
		Tags:         p.Tags,
		CodeSnippet:  p.CodeSnippet,
		Size:         p.Size,
	}
}

// NoteRepo is the /api/notes resource.
type NoteRepo struct{ c *Client }

func (r *NoteRepo) Create(ctx context.Context, note *model.Note) error {
	return r.c.do(ctx, http.MethodPost, "/api/notes", noteInput(note), note)
}

func (r *NoteRepo) GetByID(ctx context.Context, id string) (*model.Note, error) {
	var n model.Note
	if err := r.c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(id), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepo) List(ctx context.Context, _ repository.ListOptions) ([]model.Note, error) {
	notes := []model.Note{}
	if err := r.c.do(ctx, http.MethodGet, "/api/notes", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *NoteRepo) Update(ctx context.Context, note *model.Note) error {
	return r.c.do(ctx, http.MethodPut, "/api/notes/"+url.PathEscape(note.ID), noteInput(note), note)
}

func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(id), nil, nil)
}

func noteInput(n *model.Note) model.NoteInput {
	return model.NoteInput{Title: n.Title, Content: n.Content, Category: n.Category}
}
