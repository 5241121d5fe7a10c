package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/service"
)

type confirmFocus int

const (
	focusCancel confirmFocus = iota
	focusConfirm
)

// confirmDelete is the yes/no prompt in front of a note delete. Focus starts
// on cancel so a stray enter does nothing destructive.
type confirmDelete struct {
	note  model.Note
	focus confirmFocus
}

func (m Model) visibleNotes() []model.Note {
	return service.FilterNotes(m.noteList, m.query)
}

func (m Model) selectedNote() (model.Note, bool) {
	notes := m.visibleNotes()
	if m.noteCursor < 0 || m.noteCursor >= len(notes) {
		return model.Note{}, false
	}
	return notes[m.noteCursor], true
}

func (m Model) updateNotes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	if m.searching {
		return m.updateSearch(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.screen = screenGallery
	case "up", "k":
		m.noteCursor = clamp(m.noteCursor-1, len(m.visibleNotes()))
	case "down", "j":
		m.noteCursor = clamp(m.noteCursor+1, len(m.visibleNotes()))
	case "r":
		return m, m.loadNotes()
	case "/":
		m.searching = true
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case "esc":
		// Clears an applied search.
		m.query = ""
		m.noteCursor = 0
	case "c":
		n, ok := m.selectedNote()
		if !ok {
			return m, nil
		}
		write := m.copy
		return m, func() tea.Msg {
			return copiedMsg{title: n.Title, err: write(n.Content)}
		}
	case "d":
		n, ok := m.selectedNote()
		if !ok {
			return m, nil
		}
		m.confirm = &confirmDelete{note: n, focus: focusCancel}
	}
	return m, nil
}

// updateSearch filters as the user types; enter keeps the query, esc drops it.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.query = ""
		m.noteCursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	m.noteCursor = clamp(m.noteCursor, len(m.visibleNotes()))
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	switch msg.String() {
	case "y":
		return m.deleteConfirmed()
	case "n", "esc", "q":
		m.confirm = nil
	case "tab", "left", "right", "h", "l":
		if c.focus == focusCancel {
			c.focus = focusConfirm
		} else {
			c.focus = focusCancel
		}
	case "enter":
		if c.focus == focusConfirm {
			return m.deleteConfirmed()
		}
		m.confirm = nil
	}
	return m, nil
}

func (m Model) deleteConfirmed() (tea.Model, tea.Cmd) {
	id := m.confirm.note.ID
	m.confirm = nil
	ctx := m.ctx
	notes := m.notes
	return m, func() tea.Msg {
		return noteDeletedMsg{id: id, err: notes.Delete(ctx, id)}
	}
}
