// internal/cart/handler.go
package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bookhaven/internal/auth"
	"bookhaven/internal/catalog"
	"bookhaven/internal/httpx"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/cart", h.handleGet)
	r.Post("/cart/items", h.handleAdd)
	r.Put("/cart/items/{bookID}", h.handleSetQuantity)
	r.Delete("/cart/items/{bookID}", h.handleRemove)
	r.Delete("/cart", h.handleClear)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	c, err := h.service.Get(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	var req struct {
		BookID uuid.UUID `json:"book_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	c, err := h.service.AddBook(r.Context(), userID, req.BookID)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}
	bookID, err := uuid.Parse(chi.URLParam(r, "bookID"))
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_id", "book id must be a UUID")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	c, err := h.service.SetQuantity(r.Context(), userID, bookID, req.Quantity)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}
	bookID, err := uuid.Parse(chi.URLParam(r, "bookID"))
	if err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_id", "book id must be a UUID")
		return
	}

	c, err := h.service.RemoveBook(r.Context(), userID, bookID)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	c, err := h.service.Clear(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) respondMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrBookNotFound):
		httpx.RespondError(w, http.StatusNotFound, "book_not_found", err.Error())
	case errors.Is(err, ErrQuantityLimit):
		httpx.RespondError(w, http.StatusBadRequest, "quantity_limit", err.Error())
	case errors.Is(err, ErrInvalidQuantity):
		httpx.RespondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	default:
		httpx.RespondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
