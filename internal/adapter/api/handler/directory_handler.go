package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/dealer-portal/internal/usecase"
)

// DirectoryHandler handles users and the regions catalog.
type DirectoryHandler struct {
	responder
	directory *usecase.DirectoryUseCase
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(directory *usecase.DirectoryUseCase, logger *slog.Logger, maxBody int64) *DirectoryHandler {
	return &DirectoryHandler{responder: responder{logger: logger, maxBody: maxBody}, directory: directory}
}

// ListUsers returns every user.
// GET /api/users
func (h *DirectoryHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.directory.Users())
}

// Me returns the caller.
// GET /api/me
func (h *DirectoryHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	h.respondWithJSON(w, http.StatusOK, actor)
}

// CreateUser adds a user.
// POST /api/users
func (h *DirectoryHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in usecase.UserInput
	if !h.decodeJSON(w, r, &in) {
		return
	}
	u, res, err := h.directory.CreateUser(r.Context(), actor, in)
	h.respondWrite(w, http.StatusCreated, res, err, u)
}

// UpdateUser replaces a user's role, status, profile and coverage.
// PUT /api/users/{username}
func (h *DirectoryHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in usecase.UserInput
	if !h.decodeJSON(w, r, &in) {
		return
	}
	u, res, err := h.directory.UpdateUser(r.Context(), actor, r.PathValue("username"), in)
	h.respondWrite(w, http.StatusOK, res, err, u)
}

// ListRegions returns the catalog.
// GET /api/regions
func (h *DirectoryHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.directory.Regions())
}

// AddRegion adds a region to a state.
// POST /api/regions/{state}
func (h *DirectoryHandler) AddRegion(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var payload struct {
		Name string `json:"name"`
	}
	if !h.decodeJSON(w, r, &payload) {
		return
	}
	res, err := h.directory.AddRegion(r.Context(), actor, r.PathValue("state"), payload.Name)
	h.respondWrite(w, http.StatusCreated, res, err, nil)
}

// DeleteRegion removes a region no dealer uses.
// DELETE /api/regions/{state}/{name}
func (h *DirectoryHandler) DeleteRegion(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	res, err := h.directory.DeleteRegion(r.Context(), actor, r.PathValue("state"), r.PathValue("name"))
	h.respondWrite(w, http.StatusOK, res, err, nil)
}
