package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/V4T54L/dealer-portal/internal/domain"
)

// SnapshotSource is the part of the store the admin endpoints use.
type SnapshotSource interface {
	Snapshot() *domain.Snapshot
	Refresh(ctx context.Context) error
}

// AdminHandler serves health and snapshot maintenance endpoints.
type AdminHandler struct {
	responder
	store SnapshotSource
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(store SnapshotSource, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{responder: responder{logger: logger}, store: store}
}

type snapshotStatus struct {
	Status   string `json:"status"`
	LoadedAt string `json:"loaded_at,omitempty"`
	Dealers  int    `json:"dealers"`
	Users    int    `json:"users"`
}

func statusOf(snap *domain.Snapshot) snapshotStatus {
	st := snapshotStatus{Status: "ok", Dealers: len(snap.Dealers), Users: len(snap.Users)}
	if snap.LoadedAt.IsZero() {
		st.Status = "empty"
	} else {
		st.LoadedAt = snap.LoadedAt.Format(time.RFC3339)
	}
	return st
}

// HealthCheck reports liveness and the state of the served snapshot.
// GET /health
func (h *AdminHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, statusOf(h.store.Snapshot()))
}

// Refresh reloads the snapshot from the row store. Admin and manager only.
// POST /api/admin/refresh
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !actor.Role.Privileged() {
		h.respondWithJSON(w, http.StatusForbidden, errorResponse{Error: "refresh requires admin or manager"})
		return
	}
	if err := h.store.Refresh(r.Context()); err != nil {
		h.logger.Error("on-demand refresh failed", "error", err)
		h.respondWithJSON(w, http.StatusBadGateway, errorResponse{Error: "row store unavailable, serving prior snapshot"})
		return
	}
	h.respondWithJSON(w, http.StatusOK, statusOf(h.store.Snapshot()))
}
