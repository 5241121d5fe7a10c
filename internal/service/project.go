package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/events"
	"github.com/sakif/project-vault/internal/form"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/repository"
)

const (
	MaxTitleLength   = 200
	MaxSnippetLength = 100000 // ~100KB
	MaxURLLength     = 2048
	MaxTagLength     = 50
)

// ProjectService manages the portfolio projects shown in the gallery.
type ProjectService struct {
	repo   repository.ProjectRepository
	events ChangePublisher
	logger *slog.Logger
}

// NewProjectService wires the service. publisher may be nil (no change feed).
func NewProjectService(repo repository.ProjectRepository, publisher ChangePublisher, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		repo:   repo,
		events: publisherOrNop(publisher),
		logger: logger,
	}
}

// List returns every project, newest first unless ascending is set.
func (s *ProjectService) List(ctx context.Context, ascending bool) ([]model.Project, error) {
	projects, err := s.repo.List(ctx, repository.ListOptions{Ascending: ascending})
	if err != nil {
		s.logger.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "project ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Create normalizes and validates in, then inserts it.
//
// NORMALIZATION (applied before validation):
//   - title and description are trimmed
//   - link and preview image get "https://" if they have no scheme
//   - tags are trimmed and empty ones dropped
//   - an empty size becomes "small"
func (s *ProjectService) Create(ctx context.Context, in model.ProjectInput) (*model.Project, error) {
	in = normalizeProject(in)
	if err := validateProject(in); err != nil {
		return nil, err
	}

	project := &model.Project{}
	in.Apply(project)

	if err := s.repo.Create(ctx, project); err != nil {
		s.logger.Error("failed to create project",
			slog.String("title", in.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.String("id", project.ID),
		slog.String("title", project.Title),
	)
	s.events.PublishChange(events.TopicProjects, events.ActionCreated, project.ID)
	return project, nil
}

// Update replaces every editable field of project id with in.
// Fetch-then-update: a missing id surfaces as NotFound from GetByID.
func (s *ProjectService) Update(ctx context.Context, id string, in model.ProjectInput) (*model.Project, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "project ID is required")
	}

	in = normalizeProject(in)
	if err := validateProject(in); err != nil {
		return nil, err
	}

	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(project)

	if err := s.repo.Update(ctx, project); err != nil {
		s.logger.Error("failed to update project",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating project: %w", err)
	}

	s.logger.Info("project updated", slog.String("id", id))
	s.events.PublishChange(events.TopicProjects, events.ActionUpdated, id)
	return project, nil
}

// UpdateSnippet writes only code_snippet. This is the code editor's save.
func (s *ProjectService) UpdateSnippet(ctx context.Context, id, code string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "project ID is required")
	}
	if len(code) > MaxSnippetLength {
		return apperror.ValidationFailed("code_snippet",
			fmt.Sprintf("code snippet must be %d characters or less", MaxSnippetLength))
	}

	if err := s.repo.UpdateSnippet(ctx, id, code); err != nil {
		s.logger.Error("failed to save snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("saving snippet: %w", err)
	}

	s.logger.Info("snippet saved", slog.String("id", id), slog.Int("bytes", len(code)))
	s.events.PublishChange(events.TopicProjects, events.ActionUpdated, id)
	return nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "project ID is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("project deleted", slog.String("id", id))
	s.events.PublishChange(events.TopicProjects, events.ActionDeleted, id)
	return nil
}

func normalizeProject(in model.ProjectInput) model.ProjectInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Link = form.EnsureScheme(in.Link)
	in.PreviewImage = form.EnsureScheme(in.PreviewImage)
	if in.Size == "" {
		in.Size = model.SizeSmall
	}

	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	in.Tags = tags
	return in
}

func validateProject(in model.ProjectInput) error {
	return validationError(validation.ValidateStruct(&in,
		validation.Field(&in.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, MaxTitleLength),
		),
		validation.Field(&in.Link, validation.RuneLength(0, MaxURLLength)),
		validation.Field(&in.PreviewImage, validation.RuneLength(0, MaxURLLength)),
		validation.Field(&in.Tags, validation.Each(validation.RuneLength(1, MaxTagLength))),
		validation.Field(&in.CodeSnippet, validation.Length(0, MaxSnippetLength)),
		validation.Field(&in.Size, validation.In(model.SizeSmall, model.SizeLarge).Error("size must be small or large")),
	))
}
