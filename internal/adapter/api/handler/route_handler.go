package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/V4T54L/dealer-portal/internal/usecase"
)

// RouteHandler handles the caller's route plans.
type RouteHandler struct {
	responder
	routes *usecase.RouteUseCase
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(routes *usecase.RouteUseCase, logger *slog.Logger, maxBody int64) *RouteHandler {
	return &RouteHandler{responder: responder{logger: logger, maxBody: maxBody}, routes: routes}
}

// List returns the route for a date.
// GET /api/routes/{date}
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	stops, err := h.routes.Stops(actor, r.PathValue("date"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, stops)
}

// Available lists covered dealers not yet on the route.
// GET /api/routes/{date}/available?q=
func (h *RouteHandler) Available(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	dealers, err := h.routes.Available(actor, r.PathValue("date"), r.URL.Query().Get("q"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, dealers)
}

// AddStop appends a dealer to the route.
// POST /api/routes/{date}/stops
func (h *RouteHandler) AddStop(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var payload struct {
		DealerID uuid.UUID `json:"dealer_id"`
	}
	if !h.decodeJSON(w, r, &payload) {
		return
	}
	stop, res, err := h.routes.AddStop(r.Context(), actor, r.PathValue("date"), payload.DealerID)
	h.respondWrite(w, http.StatusCreated, res, err, stop)
}

// MoveStop swaps a stop with its neighbour.
// POST /api/routes/{date}/stops/{id}/move
func (h *RouteHandler) MoveStop(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var payload struct {
		Direction string `json:"direction"`
	}
	if !h.decodeJSON(w, r, &payload) {
		return
	}
	res, err := h.routes.MoveStop(r.Context(), actor, r.PathValue("date"), id, payload.Direction)
	h.respondWrite(w, http.StatusOK, res, err, nil)
}

// RemoveStop deletes a stop.
// DELETE /api/routes/{date}/stops/{id}
func (h *RouteHandler) RemoveStop(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.routes.RemoveStop(r.Context(), actor, id)
	h.respondWrite(w, http.StatusOK, res, err, nil)
}
