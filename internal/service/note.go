package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/events"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/repository"
)

const MaxNoteContentLength = 200000

// NoteService manages the private notes vault: saved prompts and notes.
type NoteService struct {
	repo   repository.NoteRepository
	events ChangePublisher
	logger *slog.Logger
}

func NewNoteService(repo repository.NoteRepository, publisher ChangePublisher, logger *slog.Logger) *NoteService {
	return &NoteService{
		repo:   repo,
		events: publisherOrNop(publisher),
		logger: logger,
	}
}

// List returns notes newest first. A non-empty query keeps only notes whose
// title or content contains it, ignoring case.
//
// The filter runs here rather than in SQL: the vault holds a personal-sized
// set of notes and the HTTP client store has no query language.
func (s *NoteService) List(ctx context.Context, query string) ([]model.Note, error) {
	notes, err := s.repo.List(ctx, repository.ListOptions{})
	if err != nil {
		s.logger.Error("failed to list notes", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return FilterNotes(notes, query), nil
}

// FilterNotes applies the notes search to an already loaded list.
func FilterNotes(notes []model.Note, query string) []model.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return notes
	}

	matched := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Content), q) {
			matched = append(matched, n)
		}
	}
	return matched
}

func (s *NoteService) Get(ctx context.Context, id string) (*model.Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "note ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *NoteService) Create(ctx context.Context, in model.NoteInput) (*model.Note, error) {
	in = normalizeNote(in)
	if err := validateNote(in); err != nil {
		return nil, err
	}

	note := &model.Note{}
	in.Apply(note)

	if err := s.repo.Create(ctx, note); err != nil {
		s.logger.Error("failed to create note",
			slog.String("title", in.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating note: %w", err)
	}

	s.logger.Info("note created",
		slog.String("id", note.ID),
		slog.String("category", string(note.Category)),
	)
	s.events.PublishChange(events.TopicNotes, events.ActionCreated, note.ID)
	return note, nil
}

func (s *NoteService) Update(ctx context.Context, id string, in model.NoteInput) (*model.Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "note ID is required")
	}

	in = normalizeNote(in)
	if err := validateNote(in); err != nil {
		return nil, err
	}

	note, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(note)

	if err := s.repo.Update(ctx, note); err != nil {
		s.logger.Error("failed to update note",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating note: %w", err)
	}

	s.logger.Info("note updated", slog.String("id", id))
	s.events.PublishChange(events.TopicNotes, events.ActionUpdated, id)
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "note ID is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("note deleted", slog.String("id", id))
	s.events.PublishChange(events.TopicNotes, events.ActionDeleted, id)
	return nil
}

func normalizeNote(in model.NoteInput) model.NoteInput {
	in.Title = strings.TrimSpace(in.Title)
	if in.Category == "" {
		in.Category = model.CategoryPrompt
	}
	return in
}

// Content is kept byte for byte: leading indentation matters in prompts.
func validateNote(in model.NoteInput) error {
	return validationError(validation.ValidateStruct(&in,
		validation.Field(&in.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, MaxTitleLength),
		),
		validation.Field(&in.Content,
			validation.By(notBlank("content is required")),
			validation.Length(0, MaxNoteContentLength),
		),
		validation.Field(&in.Category, validation.In(model.CategoryPrompt, model.CategoryNote).Error("category must be prompt or note")),
	))
}

func notBlank(message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("validation_required", message)
		}
		return nil
	}
}
