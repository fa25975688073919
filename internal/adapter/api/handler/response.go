package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/V4T54L/dealer-portal/internal/adapter/api/middleware"
	"github.com/V4T54L/dealer-portal/internal/domain"
)

const defaultMaxBody = 64 << 10

// responder holds what every handler needs to decode requests and write
// responses.
type responder struct {
	logger  *slog.Logger
	maxBody int64
}

// writeResponse is the body returned by every mutating endpoint.
type writeResponse struct {
	Result domain.WriteResult `json:"result"`
	Data   any                `json:"data,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrRegionInUse):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (h responder) respondError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
		msg = "Internal Server Error"
	}
	h.respondWithJSON(w, code, errorResponse{Error: msg})
}

// respondWrite reports a write. A rolled-back write is a 502 because the
// row store refused it; ok and warning use code.
func (h responder) respondWrite(w http.ResponseWriter, code int, res domain.WriteResult, err error, data any) {
	if err != nil {
		h.respondError(w, err)
		return
	}
	if res.Outcome == domain.WriteRolledBack {
		h.respondWithJSON(w, http.StatusBadGateway, writeResponse{Result: res})
		return
	}
	h.respondWithJSON(w, code, writeResponse{Result: res, Data: data})
}

func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	limit := h.maxBody
	if limit <= 0 {
		limit = defaultMaxBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return false
		}
		h.respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// actor returns the user set by the auth middleware, writing a 401 when
// it is missing.
func (h responder) actor(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	u, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}
	return u, ok
}

func (h responder) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
