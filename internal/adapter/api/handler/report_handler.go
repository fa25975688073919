package handler

import (
	"log/slog"
	"net/http"

	"github.com/V4T54L/dealer-portal/internal/usecase"
)

// ReportHandler serves activity reports.
type ReportHandler struct {
	responder
	reports *usecase.ReportUseCase
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *usecase.ReportUseCase, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{responder: responder{logger: logger}, reports: reports}
}

// Get builds the report.
// GET /api/reports?scope={ALL|username}&sort={overdue|recent}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	report, err := h.reports.Build(actor, q.Get("scope"), q.Get("sort"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, report)
}
