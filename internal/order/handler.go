// internal/order/handler.go
package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bookhaven/internal/auth"
	"bookhaven/internal/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes(r chi.Router, staff func(http.Handler) http.Handler) {
	r.Get("/orders", h.handleList)
	r.Get("/orders/{orderID}", h.handleGet)
	r.With(staff).Get("/orders/claim/{code}", h.handleClaimLookup)
	r.With(staff).Post("/orders/{orderID}/status", h.handleTransition)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	orders, err := h.service.ListOrders(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if orders == nil {
		orders = []*Order{}
	}
	httpx.RespondJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_id", "order id must be a UUID")
		return
	}

	ord, err := h.service.GetOrder(r.Context(), userID, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "order_not_found", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, ord)
}

func (h *Handler) handleClaimLookup(w http.ResponseWriter, r *http.Request) {
	ord, err := h.service.GetByClaimCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "order_not_found", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, ord)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_id", "order id must be a UUID")
		return
	}

	var req struct {
		Status Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ord, err := h.service.Transition(r.Context(), orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			httpx.RespondError(w, http.StatusNotFound, "order_not_found", err.Error())
		case errors.Is(err, ErrInvalidTransition):
			httpx.RespondError(w, http.StatusConflict, "invalid_transition", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "internal", err.Error())
		}
		return
	}
	httpx.RespondJSON(w, http.StatusOK, ord)
}
