// Package tui is the terminal front end of the vault.
//
// HOW IT IS WIRED:
// The model talks to ProjectService and NoteService, never to a store
// directly. `vault tui` builds those services on top of client.Client, so
// every read and write goes through the running server's JSON API, but any
// repository implementation works (the tests use in-memory fakes).
//
// THE LOOP:
// Store calls never run inside Update. Update returns a tea.Cmd that makes the
// call on bubbletea's command goroutine and reports back with a *Msg value;
// Update then applies the result. Every mutation is followed by a reload of
// the list it touched.
//
// SCREENS:
//
//	gallery  project list with a highlighted snippet preview; enter opens the editor
//	editor   textarea over an editor.Session; ctrl+s saves, esc leaves
//	notes    note list with a Markdown preview; / search, c copy, d delete
package tui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/service"
)

type screen int

const (
	screenGallery screen = iota
	screenEditor
	screenNotes
)

type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
)

type toast struct {
	kind toastKind
	text string
}

// Model is the root bubbletea model. It is a value type; Update returns the
// next state.
type Model struct {
	ctx      context.Context
	projects *service.ProjectService
	notes    *service.NoteService
	copy     func(string) error

	screen        screen
	width, height int

	projectList   []model.Project
	projectCursor int
	projectsErr   error

	noteList   []model.Note
	noteCursor int
	notesErr   error
	query      string
	searching  bool
	search     textinput.Model
	confirm    *confirmDelete

	editor *snippetEditor
	toast  *toast
}

// Option customizes a Model.
type Option func(*Model)

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) { m.copy = write }
}

func New(ctx context.Context, projects *service.ProjectService, notes *service.NoteService, opts ...Option) Model {
	search := textinput.New()
	search.Placeholder = "search title or content"
	search.Prompt = "/ "
	search.CharLimit = 200

	m := Model{
		ctx:      ctx,
		projects: projects,
		notes:    notes,
		copy:     clipboard.WriteAll,
		search:   search,
		width:    100,
		height:   30,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Run starts the program on the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, projects *service.ProjectService, notes *service.NoteService) error {
	p := tea.NewProgram(
		New(ctx, projects, notes),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal ui: %w", err)
	}
	return nil
}

// =============================================================================
// MESSAGES
// =============================================================================

type projectsLoadedMsg struct {
	projects []model.Project
	err      error
}

type notesLoadedMsg struct {
	notes []model.Note
	err   error
}

type noteDeletedMsg struct {
	id  string
	err error
}

type copiedMsg struct {
	title string
	err   error
}

func (m Model) loadProjects() tea.Cmd {
	return func() tea.Msg {
		projects, err := m.projects.List(m.ctx, false)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

// loadNotes always fetches the full list; the search query is applied on
// top of it so changing the query does not hit the store.
func (m Model) loadNotes() tea.Cmd {
	return func() tea.Msg {
		notes, err := m.notes.List(m.ctx, "")
		return notesLoadedMsg{notes: notes, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadProjects(), m.loadNotes())
}

// =============================================================================
// UPDATE
// =============================================================================

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.editor != nil {
			m.editor.resize(m.width, m.height)
		}
		return m, nil

	case projectsLoadedMsg:
		m.projectsErr = msg.err
		if msg.err == nil {
			m.projectList = msg.projects
			m.projectCursor = clamp(m.projectCursor, len(m.projectList))
			if m.editor != nil {
				m.editor.refresh(m.projectList)
			}
		}
		return m, nil

	case notesLoadedMsg:
		m.notesErr = msg.err
		if msg.err == nil {
			m.noteList = msg.notes
			m.noteCursor = clamp(m.noteCursor, len(m.visibleNotes()))
		}
		return m, nil

	case snippetSavedMsg:
		return m.handleSnippetSaved(msg)

	case noteDeletedMsg:
		if msg.err != nil {
			m.toast = &toast{kind: toastError, text: "Delete failed: " + apperror.Message(msg.err)}
			return m, nil
		}
		m.toast = &toast{kind: toastSuccess, text: "Note deleted"}
		return m, m.loadNotes()

	case copiedMsg:
		if msg.err != nil {
			m.toast = &toast{kind: toastError, text: "Copy failed: " + msg.err.Error()}
		} else {
			m.toast = &toast{kind: toastSuccess, text: fmt.Sprintf("Copied %q", msg.title)}
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.editor != nil {
				m.editor.close()
			}
			return m, tea.Quit
		}
		// A toast lasts until the next key press.
		m.toast = nil

		switch m.screen {
		case screenEditor:
			return m.updateEditor(msg)
		case screenNotes:
			return m.updateNotes(msg)
		default:
			return m.updateGallery(msg)
		}
	}

	if m.screen == screenEditor && m.editor != nil {
		return m, m.editor.updateArea(msg)
	}
	if m.searching {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateGallery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.screen = screenNotes
	case "up", "k":
		m.projectCursor = clamp(m.projectCursor-1, len(m.projectList))
	case "down", "j":
		m.projectCursor = clamp(m.projectCursor+1, len(m.projectList))
	case "r":
		return m, m.loadProjects()
	case "enter":
		p, ok := m.selectedProject()
		if !ok {
			return m, nil
		}
		m.editor = newSnippetEditor(p, m.projects, m.width, m.height)
		m.screen = screenEditor
		return m, m.editor.focus()
	}
	return m, nil
}

func (m Model) selectedProject() (model.Project, bool) {
	if m.projectCursor < 0 || m.projectCursor >= len(m.projectList) {
		return model.Project{}, false
	}
	return m.projectList[m.projectCursor], true
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
