package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/dealer-portal/internal/usecase"
)

// ExportHandler streams CSV exports.
type ExportHandler struct {
	responder
	exports *usecase.ExportUseCase
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exports *usecase.ExportUseCase, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{responder: responder{logger: logger}, exports: exports}
}

func exportRequest(r *http.Request) usecase.ExportRequest {
	q := r.URL.Query()
	return usecase.ExportRequest{
		View:   r.PathValue("view"),
		Filter: filterFromQuery(r),
		Scope:  q.Get("scope"),
		Sort:   q.Get("sort"),
		Date:   q.Get("date"),
	}
}

// Download renders a view as CSV.
// GET /api/exports/{view}?...
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req := exportRequest(r)
	body, err := h.exports.Render(actor, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+usecase.Filename(req)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Publish stores the rendered view in export storage.
// POST /api/exports/{view}?...
func (h *ExportHandler) Publish(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	location, err := h.exports.Publish(r.Context(), actor, exportRequest(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, map[string]string{"location": location})
}
