// internal/announce/handler.go
package announce

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bookhaven/internal/httpx"
	"bookhaven/pkg/logger"
)

// Handler exposes announcement endpoints.
type Handler struct {
	svc Service
	log *logger.Logger
}

func NewHandler(svc Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log.With("handler", "announce")}
}

// Routes mounts the announcement endpoints. Creation and expiry changes
// require the staff middleware; reading is open to any authenticated user.
func (h *Handler) Routes(r chi.Router, staff func(http.Handler) http.Handler) {
	r.Get("/announcements", h.handleListActive)
	r.Group(func(r chi.Router) {
		r.Use(staff)
		r.Post("/announcements", h.handleCreate)
		r.Patch("/announcements/{announcementID}/expiry", h.handleUpdateExpiry)
	})
}

type createRequest struct {
	Description string      `json:"description"`
	PostedAt    *time.Time  `json:"postedAt,omitempty"`
	ExpiresAt   *time.Time  `json:"expiresAt,omitempty"`
	Recipients  []uuid.UUID `json:"recipients,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	a, err := h.svc.Create(r.Context(), CreateParams{
		Description: req.Description,
		PostedAt:    req.PostedAt,
		ExpiresAt:   req.ExpiresAt,
		Recipients:  req.Recipients,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, a)
}

type updateExpiryRequest struct {
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (h *Handler) handleUpdateExpiry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "announcementID"))
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid announcement id")
		return
	}
	var req updateExpiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	a, err := h.svc.UpdateExpiry(r.Context(), id, req.ExpiresAt)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, a)
}

func (h *Handler) handleListActive(w http.ResponseWriter, r *http.Request) {
	active, err := h.svc.ListActive(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, active)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrAnnouncementNotFound):
		httpx.RespondError(w, http.StatusNotFound, "not_found", "announcement not found")
	case errors.Is(err, ErrEmptyDescription), errors.Is(err, ErrExpiryBeforePost):
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		h.log.Error("announcement request failed", "error", err)
		httpx.RespondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
