package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/model"
)

func newTestNoteService(t *testing.T) (*NoteService, *mockNoteRepo, *recordingPublisher) {
	t.Helper()
	repo := newMockNoteRepo()
	pub := &recordingPublisher{}
	return NewNoteService(repo, pub, discardLogger()), repo, pub
}

func TestNoteCreate_DefaultsCategory(t *testing.T) {
	svc, _, pub := newTestNoteService(t)

	n, err := svc.Create(context.Background(), model.NoteInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if n.Category != model.CategoryPrompt {
		t.Errorf("Category = %q, want prompt", n.Category)
	}
	if got := pub.all(); len(got) != 1 || got[0] != "notes.changed created "+n.ID {
		t.Errorf("published %v", got)
	}
}

func TestNoteCreate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input model.NoteInput
	}{
		{"missing title", model.NoteInput{Content: "c"}},
		{"blank content", model.NoteInput{Title: "t", Content: " \n "}},
		{"unknown category", model.NoteInput{Title: "t", Content: "c", Category: "todo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestNoteService(t)
			_, err := svc.Create(context.Background(), tt.input)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
			if len(repo.notes) != 0 {
				t.Error("invalid note stored")
			}
		})
	}
}

func TestNoteList_Search(t *testing.T) {
	svc, _, _ := newTestNoteService(t)
	ctx := context.Background()
	_, _ = svc.Create(ctx, model.NoteInput{Title: "Code review prompt", Content: "Review this diff"})
	_, _ = svc.Create(ctx, model.NoteInput{Title: "Groceries", Content: "eggs, MILK", Category: model.CategoryNote})
	_, _ = svc.Create(ctx, model.NoteInput{Title: "Refactor", Content: "Ask for a code REVIEW first"})

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"review", 2},
		{"milk", 1},
		{"  GROCER ", 1},
		{"nothing matches", 0},
	}

	for _, tt := range tests {
		notes, err := svc.List(ctx, tt.query)
		if err != nil {
			t.Fatalf("List(%q) error = %v", tt.query, err)
		}
		if len(notes) != tt.want {
			t.Errorf("List(%q) returned %d notes, want %d", tt.query, len(notes), tt.want)
		}
	}
}

func TestNoteList_NewestFirst(t *testing.T) {
	svc, _, _ := newTestNoteService(t)
	ctx := context.Background()
	_, _ = svc.Create(ctx, model.NoteInput{Title: "old", Content: "x"})
	newest, _ := svc.Create(ctx, model.NoteInput{Title: "new", Content: "x"})

	notes, _ := svc.List(ctx, "")
	if notes[0].ID != newest.ID {
		t.Errorf("first note = %q, want newest", notes[0].Title)
	}
}

func TestNoteUpdate(t *testing.T) {
	svc, repo, _ := newTestNoteService(t)
	ctx := context.Background()
	n, _ := svc.Create(ctx, model.NoteInput{Title: "t", Content: "c"})

	_, err := svc.Update(ctx, n.ID, model.NoteInput{Title: "t2", Content: "c2", Category: model.CategoryNote})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if stored := repo.notes[n.ID]; stored.Title != "t2" || stored.Category != model.CategoryNote {
		t.Errorf("stored = %+v", stored)
	}
}

func TestNoteDelete_NotFound(t *testing.T) {
	svc, _, pub := newTestNoteService(t)

	err := svc.Delete(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if len(pub.all()) != 0 {
		t.Error("failed delete was announced")
	}
}

func TestNoteList_StoreFailure(t *testing.T) {
	svc, repo, _ := newTestNoteService(t)
	repo.failWith = errStoreDown

	if _, err := svc.List(context.Background(), ""); !errors.Is(err, errStoreDown) {
		t.Errorf("error = %v, want store error", err)
	}
}
