package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/V4T54L/dealer-portal/internal/domain"
	"github.com/V4T54L/dealer-portal/internal/usecase"
)

// DealerHandler handles HTTP requests for dealers and dealer search.
type DealerHandler struct {
	responder
	dealers *usecase.DealerUseCase
	search  *usecase.SearchUseCase
}

// NewDealerHandler creates a new DealerHandler.
func NewDealerHandler(dealers *usecase.DealerUseCase, search *usecase.SearchUseCase, logger *slog.Logger, maxBody int64) *DealerHandler {
	return &DealerHandler{
		responder: responder{logger: logger, maxBody: maxBody},
		dealers:   dealers,
		search:    search,
	}
}

func filterFromQuery(r *http.Request) usecase.DealerFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	return usecase.DealerFilter{
		Text:   q.Get("q"),
		Rep:    q.Get("rep"),
		State:  q.Get("state"),
		Region: q.Get("region"),
		Type:   q.Get("type"),
		Status: q.Get("status"),
		Page:   page,
	}
}

// Search lists dealers.
// GET /api/dealers?q=&rep=&state=&region=&type=&status=&page=
func (h *DealerHandler) Search(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	h.respondWithJSON(w, http.StatusOK, h.search.Search(actor, filterFromQuery(r)))
}

// RegionOptions lists the regions offered by the region filter.
// GET /api/region-options?state=
func (h *DealerHandler) RegionOptions(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.search.RegionOptions(r.URL.Query().Get("state")))
}

// Get returns a dealer with its notes, tasks and permissions.
// GET /api/dealers/{id}
func (h *DealerHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.dealers.Get(actor, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, detail)
}

// Create adds a dealer.
// POST /api/dealers
func (h *DealerHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var in usecase.DealerInput
	if !h.decodeJSON(w, r, &in) {
		return
	}
	d, res, err := h.dealers.Create(r.Context(), actor, in)
	h.respondWrite(w, http.StatusCreated, res, err, d)
}

// Update changes dealer fields.
// PATCH /api/dealers/{id}
func (h *DealerHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var in usecase.DealerUpdate
	if !h.decodeJSON(w, r, &in) {
		return
	}
	d, res, err := h.dealers.Update(r.Context(), actor, id, in)
	h.respondWrite(w, http.StatusOK, res, err, d)
}

// Reassign sets or clears the rep override.
// PUT /api/dealers/{id}/rep
func (h *DealerHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var payload struct {
		Username string `json:"username"`
	}
	if !h.decodeJSON(w, r, &payload) {
		return
	}
	d, res, err := h.dealers.Reassign(r.Context(), actor, id, payload.Username)
	h.respondWrite(w, http.StatusOK, res, err, d)
}

// SetSendingDeals records the sending-deals answer.
// PUT /api/dealers/{id}/sending-deals
func (h *DealerHandler) SetSendingDeals(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var payload struct {
		Value   domain.TriState      `json:"value"`
		Reasons domain.NoDealReasons `json:"reasons"`
	}
	if !h.decodeJSON(w, r, &payload) {
		return
	}
	d, res, err := h.dealers.SetSendingDeals(r.Context(), actor, id, payload.Value, payload.Reasons)
	h.respondWrite(w, http.StatusOK, res, err, d)
}

// Delete removes a dealer. The body must repeat the dealer's name.
// DELETE /api/dealers/{id}
func (h *DealerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var payload struct {
		Confirm string `json:"confirm"`
	}
	if !h.decodeJSON(w, r, &payload) {
		return
	}
	res, err := h.dealers.Delete(r.Context(), actor, id, payload.Confirm)
	h.respondWrite(w, http.StatusOK, res, err, nil)
}
