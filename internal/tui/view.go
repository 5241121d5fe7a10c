package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/editor"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/render"
)

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenEditor:
		body = m.viewEditor()
	case screenNotes:
		body = m.viewNotes()
	default:
		body = m.viewGallery()
	}

	parts := []string{m.viewTabs(), body}
	if m.toast != nil {
		style := toastSuccessStyle
		if m.toast.kind == toastError {
			style = toastErrorStyle
		}
		parts = append(parts, style.Render(m.toast.text))
	}
	parts = append(parts, mutedStyle.Render(m.help()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	gallery, notes := tabStyle, tabStyle
	if m.screen == screenNotes {
		notes = activeTabStyle
	} else {
		gallery = activeTabStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("vault "),
		gallery.Render("Gallery"),
		notes.Render("Notes"),
	) + "\n"
}

func (m Model) help() string {
	switch {
	case m.screen == screenEditor:
		return "ctrl+s: save   esc: back   ctrl+c: quit"
	case m.screen == screenNotes && m.confirm != nil:
		return "y: delete   n/esc: cancel   tab: focus   enter: select"
	case m.screen == screenNotes && m.searching:
		return "enter: apply   esc: clear"
	case m.screen == screenNotes:
		return "j/k: move   /: search   c: copy   d: delete   r: reload   tab: gallery   q: quit"
	default:
		return "j/k: move   enter: edit snippet   r: reload   tab: notes   q: quit"
	}
}

func (m Model) listWidth() int {
	return max(m.width*2/5, 24)
}

func (m Model) previewWidth() int {
	return max(m.width-m.listWidth()-6, 20)
}

func (m Model) viewGallery() string {
	if m.projectsErr != nil {
		return toastErrorStyle.Render("Could not load projects: " + apperror.Message(m.projectsErr))
	}
	if len(m.projectList) == 0 {
		return mutedStyle.Render("No projects yet.")
	}

	rows := make([]string, 0, len(m.projectList))
	for i, p := range m.projectList {
		line := p.Title
		if p.Size == model.SizeLarge {
			line += mutedStyle.Render("  [large]")
		}
		if i == m.projectCursor {
			rows = append(rows, selectedRowStyle.Render(line))
		} else {
			rows = append(rows, rowStyle.Render(line))
		}
	}
	list := lipgloss.NewStyle().Width(m.listWidth()).Render(strings.Join(rows, "\n"))

	p, _ := m.selectedProject()
	var detail []string
	detail = append(detail, titleStyle.Render(p.Title))
	if p.Description != "" {
		detail = append(detail, p.Description)
	}
	if p.Link != "" {
		detail = append(detail, mutedStyle.Render(p.Link))
	}
	if tags := p.VisibleTags(3); len(tags) > 0 {
		detail = append(detail, tagStyle.Render(strings.Join(tags, " · ")))
	}
	detail = append(detail, "")
	if p.CodeSnippet == "" {
		detail = append(detail, mutedStyle.Render("No code snippet."))
	} else {
		detail = append(detail, render.HighlightTerminal(p.CodeSnippet, ""))
	}
	preview := paneStyle.Width(m.previewWidth()).Render(strings.Join(detail, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, list, " ", preview)
}

func (m Model) viewEditor() string {
	e := m.editor
	if e == nil {
		return ""
	}
	state := e.session.State()
	status := statusStyles[state.String()].Render(state.String())
	if state == editor.StateSaveFailed && e.session.Err() != nil {
		status += mutedStyle.Render(": " + apperror.Message(e.session.Err()))
	}

	header := fmt.Sprintf("%s  %s", titleStyle.Render(e.project.Title), status)
	return lipgloss.JoinVertical(lipgloss.Left, header, e.area.View())
}

func (m Model) viewNotes() string {
	var top string
	switch {
	case m.searching:
		top = m.search.View()
	case m.query != "":
		top = mutedStyle.Render(fmt.Sprintf("filter: %q (esc to clear)", m.query))
	}

	var content string
	notes := m.visibleNotes()
	switch {
	case m.notesErr != nil:
		content = toastErrorStyle.Render("Could not load notes: " + apperror.Message(m.notesErr))
	case len(notes) == 0 && m.query != "":
		content = mutedStyle.Render("No notes match.")
	case len(notes) == 0:
		content = mutedStyle.Render("No notes yet.")
	default:
		rows := make([]string, 0, len(notes))
		for i, n := range notes {
			line := n.Title + mutedStyle.Render("  "+string(n.Category))
			if i == m.noteCursor {
				rows = append(rows, selectedRowStyle.Render(line))
			} else {
				rows = append(rows, rowStyle.Render(line))
			}
		}
		list := lipgloss.NewStyle().Width(m.listWidth()).Render(strings.Join(rows, "\n"))

		n, _ := m.selectedNote()
		body := renderMarkdown(n.Content, m.previewWidth())
		preview := paneStyle.Width(m.previewWidth()).Render(titleStyle.Render(n.Title) + "\n\n" + body)
		content = lipgloss.JoinHorizontal(lipgloss.Top, list, " ", preview)
	}

	if m.confirm != nil {
		content = m.viewConfirm()
	}
	if top == "" {
		return content
	}
	return lipgloss.JoinVertical(lipgloss.Left, top, "", content)
}

func (m Model) viewConfirm() string {
	c := m.confirm
	yes, no := buttonStyle, buttonStyle
	if c.focus == focusConfirm {
		yes = activeButtonStyle
	} else {
		no = activeButtonStyle
	}
	controls := lipgloss.JoinHorizontal(lipgloss.Top, yes.Render("Delete"), " ", no.Render("Cancel"))
	body := fmt.Sprintf("Delete note %q?\nThis cannot be undone.\n\n%s", c.note.Title, controls)
	return modalStyle.Render(body)
}
