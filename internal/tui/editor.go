package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/editor"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/service"
)

// snippetEditor is the editor screen for one project's code snippet.
//
// The textarea holds what is on screen; the session decides whether that
// differs from what is stored and runs the save. Leaving the screen closes
// the session, and a save result for a closed session is dropped.
type snippetEditor struct {
	project model.Project
	session *editor.Session
	area    textarea.Model

	// discardArmed is set by esc on a dirty editor; a second esc leaves.
	discardArmed bool
}

type snippetSavedMsg struct {
	session *editor.Session
	id      string
	code    string
	err     error
}

func newSnippetEditor(p model.Project, projects *service.ProjectService, width, height int) *snippetEditor {
	area := textarea.New()
	area.ShowLineNumbers = true
	area.CharLimit = 100000
	area.Placeholder = "// code snippet"
	area.SetValue(p.CodeSnippet)

	id := p.ID
	e := &snippetEditor{
		project: p,
		area:    area,
		session: editor.New(p.CodeSnippet, func(ctx context.Context, text string) error {
			return projects.UpdateSnippet(ctx, id, text)
		}),
	}
	e.resize(width, height)
	return e
}

func (e *snippetEditor) focus() tea.Cmd {
	return e.area.Focus()
}

func (e *snippetEditor) resize(width, height int) {
	e.area.SetWidth(max(width-4, 20))
	e.area.SetHeight(max(height-8, 5))
}

func (e *snippetEditor) close() {
	e.session.Close()
}

// updateArea forwards msg to the textarea and reports the new text to the
// session.
func (e *snippetEditor) updateArea(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	e.area, cmd = e.area.Update(msg)
	e.session.OnTextChanged(e.area.Value())
	return cmd
}

// commit runs the save on the command goroutine. The session flips to
// saving as soon as the commit starts, so a second ctrl+s before the first
// result arrives gets ErrSaveInFlight instead of a second save. The reported
// code is the text the store received, not what was on screen when ctrl+s
// was pressed.
func (e *snippetEditor) commit(ctx context.Context) tea.Cmd {
	session := e.session
	id := e.project.ID
	return func() tea.Msg {
		code, err := session.CommitText(ctx)
		return snippetSavedMsg{session: session, id: id, code: code, err: err}
	}
}

// refresh picks up the open project from a reloaded list. A clean session is
// reseeded with the stored snippet; pending edits are never replaced.
func (e *snippetEditor) refresh(projects []model.Project) {
	for _, p := range projects {
		if p.ID != e.project.ID {
			continue
		}
		if e.session.Dirty() || e.session.Saving() {
			return
		}
		e.project = p
		if p.CodeSnippet != e.session.Text() {
			e.session.Reseed(p.CodeSnippet)
			e.area.SetValue(p.CodeSnippet)
		}
		return
	}
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.editor
	if e == nil {
		m.screen = screenGallery
		return m, nil
	}

	switch msg.String() {
	case "ctrl+s":
		e.discardArmed = false
		if !e.session.CanCommit() {
			return m, nil
		}
		return m, e.commit(m.ctx)

	case "esc":
		if e.session.Dirty() && !e.discardArmed {
			e.discardArmed = true
			m.toast = &toast{kind: toastError, text: "Unsaved changes. Press esc again to discard, ctrl+s to save."}
			return m, nil
		}
		e.close()
		m.editor = nil
		m.screen = screenGallery
		return m, m.loadProjects()
	}

	e.discardArmed = false
	return m, e.updateArea(msg)
}

func (m Model) handleSnippetSaved(msg snippetSavedMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, editor.ErrClosed):
		return m, nil
	case errors.Is(msg.err, editor.ErrNotDirty), errors.Is(msg.err, editor.ErrSaveInFlight):
		return m, nil
	case msg.err != nil:
		if m.editor != nil && m.editor.session == msg.session {
			m.toast = &toast{kind: toastError, text: "Save failed: " + apperror.Message(msg.err)}
		}
		return m, nil
	}

	// Patch the one record in place so the gallery preview is current even
	// before the reload lands.
	for i := range m.projectList {
		if m.projectList[i].ID == msg.id {
			m.projectList[i].CodeSnippet = msg.code
		}
	}
	if m.editor != nil && m.editor.session == msg.session {
		m.editor.project.CodeSnippet = msg.code
		m.toast = &toast{kind: toastSuccess, text: "Snippet saved"}
	}
	return m, m.loadProjects()
}
