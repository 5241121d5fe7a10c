package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/service"
)

// ProjectHandler is the JSON API for projects.
//
// ROUTES:
//
//	GET    /api/projects?order=asc|desc   public
//	GET    /api/projects/{id}             public
//	POST   /api/projects                  admin
//	PUT    /api/projects/{id}             admin
//	PATCH  /api/projects/{id}/snippet     admin (the code editor's save)
//	DELETE /api/projects/{id}             admin
type ProjectHandler struct {
	service *service.ProjectService
	logger  *slog.Logger
}

func NewProjectHandler(svc *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{service: svc, logger: logger}
}

func (h *ProjectHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ascending := r.URL.Query().Get("order") == "asc"

	projects, err := h.service.List(r.Context(), ascending)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in model.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	project, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// HandleUpdateSnippet saves the code editor's text.
// Body: {"code_snippet": "..."}. Answers 204; the caller patches its copy.
func (h *ProjectHandler) HandleUpdateSnippet(w http.ResponseWriter, r *http.Request) {
	var patch model.SnippetPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.UpdateSnippet(r.Context(), chi.URLParam(r, "id"), patch.CodeSnippet); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
