package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/usecase"
)

// NoteHandler handles notes and tasks.
type NoteHandler struct {
	responder
	notes *usecase.NoteUseCase
	tasks *usecase.TaskUseCase
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes *usecase.NoteUseCase, tasks *usecase.TaskUseCase, logger *slog.Logger, maxBody int64) *NoteHandler {
	return &NoteHandler{
		responder: responder{logger: logger, maxBody: maxBody},
		notes:     notes,
		tasks:     tasks,
	}
}

// ListNotes returns a dealer's notes, newest first.
// GET /api/dealers/{id}/notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	notes, err := h.notes.List(id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, notes)
}

// CreateNote logs a note and its follow-up writes.
// POST /api/dealers/{id}/notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var in usecase.NoteInput
	if !h.decodeJSON(w, r, &in) {
		return
	}
	note, task, res, err := h.notes.Create(r.Context(), actor, id, in)
	h.respondWrite(w, http.StatusCreated, res, err, struct {
		Note domain.Note  `json:"note"`
		Task *domain.Task `json:"task,omitempty"`
	}{note, task})
}

// ListTasks returns open tasks for ?assignee= (default: the caller).
// GET /api/tasks
func (h *NoteHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	tasks, err := h.tasks.ListOpen(actor, r.URL.Query().Get("assignee"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, tasks)
}

// CompleteTask marks a task done.
// POST /api/tasks/{id}/complete
func (h *NoteHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	task, res, err := h.tasks.Complete(r.Context(), actor, id)
	h.respondWrite(w, http.StatusOK, res, err, task)
}
