package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/repository"
)

// =========================================================================
// HAND-WRITTEN FAKES
// =========================================================================
//
// In-memory implementations of the repository interfaces. Each stores
// copies, never the caller's pointer, so a test cannot accidentally mutate
// "stored" data. Setting failWith makes every call fail, which is how the
// tests simulate the remote store being down.

var errStoreDown = errors.New("connection refused")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockProjectRepo struct {
	projects map[string]model.Project
	nextID   int
	failWith error
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]model.Project)}
}

func (m *mockProjectRepo) Create(_ context.Context, p *model.Project) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	// zero-padded so ids sort in creation order like xids do
	p.ID = fmt.Sprintf("p%04d", m.nextID)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.projects[p.ID] = *p
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, apperror.NotFound("project", id)
	}
	return &p, nil
}

func (m *mockProjectRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Project, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]model.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if opts.Ascending {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *mockProjectRepo) Update(_ context.Context, p *model.Project) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.projects[p.ID]; !ok {
		return apperror.NotFound("project", p.ID)
	}
	m.projects[p.ID] = *p
	return nil
}

func (m *mockProjectRepo) UpdateSnippet(_ context.Context, id, code string) error {
	if m.failWith != nil {
		return m.failWith
	}
	p, ok := m.projects[id]
	if !ok {
		return apperror.NotFound("project", id)
	}
	p.CodeSnippet = code
	m.projects[id] = p
	return nil
}

func (m *mockProjectRepo) Delete(_ context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.projects[id]; !ok {
		return apperror.NotFound("project", id)
	}
	delete(m.projects, id)
	return nil
}

type mockNoteRepo struct {
	notes    map[string]model.Note
	nextID   int
	failWith error
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[string]model.Note)}
}

func (m *mockNoteRepo) Create(_ context.Context, n *model.Note) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	n.ID = fmt.Sprintf("n%04d", m.nextID)
	m.notes[n.ID] = *n
	return nil
}

func (m *mockNoteRepo) GetByID(_ context.Context, id string) (*model.Note, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	n, ok := m.notes[id]
	if !ok {
		return nil, apperror.NotFound("note", id)
	}
	return &n, nil
}

func (m *mockNoteRepo) List(_ context.Context, _ repository.ListOptions) ([]model.Note, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	out := make([]model.Note, 0, len(m.notes))
	for _, n := range m.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *mockNoteRepo) Update(_ context.Context, n *model.Note) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.notes[n.ID]; !ok {
		return apperror.NotFound("note", n.ID)
	}
	m.notes[n.ID] = *n
	return nil
}

func (m *mockNoteRepo) Delete(_ context.Context, id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.notes[id]; !ok {
		return apperror.NotFound("note", id)
	}
	delete(m.notes, id)
	return nil
}

type fakeUserRepo struct {
	byGitHubID map[int64]model.User
	nextID     int
	failWith   error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byGitHubID: make(map[int64]model.User)}
}

func (f *fakeUserRepo) Upsert(_ context.Context, user *model.User) error {
	if f.failWith != nil {
		return f.failWith
	}
	if existing, ok := f.byGitHubID[user.GitHubID]; ok {
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
	} else {
		f.nextID++
		user.ID = fmt.Sprintf("user-%d", f.nextID)
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()
	f.byGitHubID[user.GitHubID] = *user
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.byGitHubID {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

// recordingPublisher captures change events in order.
type recordingPublisher struct {
	mu      sync.Mutex
	changes []string
}

func (r *recordingPublisher) PublishChange(topic, action, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, topic+" "+action+" "+id)
}

func (r *recordingPublisher) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.changes...)
}
