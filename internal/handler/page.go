package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/auth"
	"github.com/sakif/project-vault/internal/form"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/render"
	"github.com/sakif/project-vault/internal/service"
)

// PageHandler serves the three vault pages.
//
//	GET  /                              gallery (public; editor for the admin)
//	GET  /admin[?edit={id}]             project list + create/edit form
//	POST /admin/projects[/{id}]         create / update
//	POST /admin/projects/{id}/delete
//	GET  /notes[?q=&edit={id}]          notes list + form
//	POST /notes[/{id}]                  create / update
//	POST /notes/{id}/delete
//
// POST/REDIRECT/GET:
// A successful POST redirects back to its page with a success flash, so a
// refresh never resubmits. A failed create/update re-renders the page with
// the submitted values still in the form. A failed delete redirects with an
// error flash and the list stays as the store has it.
type PageHandler struct {
	projects *service.ProjectService
	notes    *service.NoteService
	views    *Views
	logger   *slog.Logger
}

func NewPageHandler(projects *service.ProjectService, notes *service.NoteService, views *Views, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		projects: projects,
		notes:    notes,
		views:    views,
		logger:   logger,
	}
}

func isAdmin(r *http.Request) bool {
	_, ok := auth.SubjectFromContext(r.Context())
	return ok
}

// =========================================================================
// GALLERY
// =========================================================================

type projectCard struct {
	model.Project
	Highlighted template.HTML
}

type galleryView struct {
	layout
	Projects []projectCard
}

func (h *PageHandler) HandleGallery(w http.ResponseWriter, r *http.Request) {
	view := galleryView{layout: layout{
		Title:  "Projects",
		Active: "gallery",
		Admin:  isAdmin(r),
		Flash:  popFlash(w, r),
	}}

	status := http.StatusOK
	projects, err := h.projects.List(r.Context(), false)
	if err != nil {
		status, _ = statusFor(err)
		view.Flash = errorFlash(err)
	}

	view.Projects = make([]projectCard, 0, len(projects))
	for _, p := range projects {
		view.Projects = append(view.Projects, projectCard{
			Project:     p,
			Highlighted: render.Highlight(p.CodeSnippet, ""),
		})
	}

	h.views.render(w, status, "gallery", view)
}

// =========================================================================
// ADMIN: PROJECTS
// =========================================================================

type adminView struct {
	layout
	Projects []model.Project
	Form     form.ProjectForm
	Sizes    []model.Size
}

func (h *PageHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	f := form.NewProjectForm()
	flash := popFlash(w, r)

	if id := r.URL.Query().Get("edit"); id != "" {
		project, err := h.projects.Get(r.Context(), id)
		if err != nil {
			flash = errorFlash(err)
		} else {
			f.FromProject(project)
		}
	}

	h.renderAdmin(w, r, http.StatusOK, f, flash)
}

func (h *PageHandler) renderAdmin(w http.ResponseWriter, r *http.Request, status int, f form.ProjectForm, flash *Flash) {
	projects, err := h.projects.List(r.Context(), false)
	if err != nil {
		status, _ = statusFor(err)
		flash = errorFlash(err)
	}

	h.views.render(w, status, "admin", adminView{
		layout: layout{
			Title:  "Admin",
			Active: "admin",
			Admin:  true,
			Flash:  flash,
		},
		Projects: projects,
		Form:     f,
		Sizes:    []model.Size{model.SizeSmall, model.SizeLarge},
	})
}

func projectFormFrom(r *http.Request) form.ProjectForm {
	return form.ProjectForm{
		EditingID:    chi.URLParam(r, "id"),
		Title:        r.PostFormValue("title"),
		Description:  r.PostFormValue("description"),
		Link:         r.PostFormValue("link"),
		PreviewImage: r.PostFormValue("preview_image"),
		Tags:         r.PostFormValue("tags"),
		CodeSnippet:  r.PostFormValue("code_snippet"),
		Size:         r.PostFormValue("size"),
	}
}

// HandleSaveProject is both POST /admin/projects (create) and
// POST /admin/projects/{id} (update).
func (h *PageHandler) HandleSaveProject(w http.ResponseWriter, r *http.Request) {
	f := projectFormFrom(r)

	var err error
	if f.Editing() {
		_, err = h.projects.Update(r.Context(), f.EditingID, f.Input())
	} else {
		_, err = h.projects.Create(r.Context(), f.Input())
	}
	if err != nil {
		status, _ := statusFor(err)
		h.renderAdmin(w, r, status, f, errorFlash(err))
		return
	}

	if f.Editing() {
		setFlash(w, FlashSuccess, "Project updated")
	} else {
		setFlash(w, FlashSuccess, "Project created")
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// HandleDeleteProject runs after the page's confirm dialog. The hidden
// "editing" field carries the form's current edit target so deleting that
// record drops the page out of edit mode.
func (h *PageHandler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f := form.ProjectForm{EditingID: r.PostFormValue("editing")}

	switch err := h.projects.Delete(r.Context(), id); {
	case err == nil:
		f.Forget(id)
		setFlash(w, FlashSuccess, "Project deleted")
	case errors.Is(err, apperror.ErrNotFound):
		// Already gone: editing it would only fail again.
		f.Forget(id)
		setFlash(w, FlashError, apperror.Message(err))
	default:
		setFlash(w, FlashError, apperror.Message(err))
	}

	http.Redirect(w, r, pageURL("/admin", "", f.EditingID), http.StatusSeeOther)
}

// =========================================================================
// NOTES
// =========================================================================

type noteCard struct {
	model.Note
	Rendered template.HTML
}

type notesView struct {
	layout
	Notes      []noteCard
	Query      string
	Form       form.NoteForm
	Categories []model.Category
}

func (h *PageHandler) HandleNotes(w http.ResponseWriter, r *http.Request) {
	f := form.NewNoteForm()
	flash := popFlash(w, r)

	if id := r.URL.Query().Get("edit"); id != "" {
		note, err := h.notes.Get(r.Context(), id)
		if err != nil {
			flash = errorFlash(err)
		} else {
			f.FromNote(note)
		}
	}

	h.renderNotes(w, r, http.StatusOK, f, flash)
}

func (h *PageHandler) renderNotes(w http.ResponseWriter, r *http.Request, status int, f form.NoteForm, flash *Flash) {
	query := r.URL.Query().Get("q")

	notes, err := h.notes.List(r.Context(), query)
	if err != nil {
		status, _ = statusFor(err)
		flash = errorFlash(err)
	}

	cards := make([]noteCard, 0, len(notes))
	for _, n := range notes {
		cards = append(cards, noteCard{Note: n, Rendered: render.Markdown(n.Content)})
	}

	h.views.render(w, status, "notes", notesView{
		layout: layout{
			Title:  "Notes",
			Active: "notes",
			Admin:  true,
			Flash:  flash,
		},
		Notes:      cards,
		Query:      query,
		Form:       f,
		Categories: model.Categories,
	})
}

func noteFormFrom(r *http.Request) form.NoteForm {
	return form.NoteForm{
		EditingID: chi.URLParam(r, "id"),
		Title:     r.PostFormValue("title"),
		Content:   r.PostFormValue("content"),
		Category:  r.PostFormValue("category"),
	}
}

func (h *PageHandler) HandleSaveNote(w http.ResponseWriter, r *http.Request) {
	f := noteFormFrom(r)

	var err error
	if f.Editing() {
		_, err = h.notes.Update(r.Context(), f.EditingID, f.Input())
	} else {
		_, err = h.notes.Create(r.Context(), f.Input())
	}
	if err != nil {
		status, _ := statusFor(err)
		h.renderNotes(w, r, status, f, errorFlash(err))
		return
	}

	if f.Editing() {
		setFlash(w, FlashSuccess, "Note updated")
	} else {
		setFlash(w, FlashSuccess, "Note saved")
	}
	http.Redirect(w, r, pageURL("/notes", r.PostFormValue("q"), ""), http.StatusSeeOther)
}

func (h *PageHandler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f := form.NoteForm{EditingID: r.PostFormValue("editing")}

	err := h.notes.Delete(r.Context(), id)
	switch {
	case err == nil:
		f.Forget(id)
		setFlash(w, FlashSuccess, "Note deleted")
	case errors.Is(err, apperror.ErrNotFound):
		// Already gone: the list reload below shows the truth.
		f.Forget(id)
		setFlash(w, FlashError, apperror.Message(err))
	default:
		setFlash(w, FlashError, apperror.Message(err))
	}

	http.Redirect(w, r, pageURL("/notes", r.PostFormValue("q"), f.EditingID), http.StatusSeeOther)
}

// pageURL rebuilds a page address with its optional search and edit target.
func pageURL(path, query, editing string) string {
	values := url.Values{}
	if query != "" {
		values.Set("q", query)
	}
	if editing != "" {
		values.Set("edit", editing)
	}
	if len(values) == 0 {
		return path
	}
	return path + "?" + values.Encode()
}
