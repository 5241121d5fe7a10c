package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/service"
)

// NoteHandler is the JSON API for notes. Every route requires the admin.
type NoteHandler struct {
	service *service.NoteService
	logger  *slog.Logger
}

func NewNoteHandler(svc *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{service: svc, logger: logger}
}

// HandleList answers GET /api/notes?q=term.
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	note, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.NoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in model.NoteInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	note, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
