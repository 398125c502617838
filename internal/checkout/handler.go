// internal/checkout/handler.go
package checkout

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"bookhaven/internal/auth"
	"bookhaven/internal/httpx"
	"bookhaven/internal/order"
	"bookhaven/internal/stock"
)

// IdempotencyKeyHeader makes retried checkout requests safe: the same key
// returns the original order instead of charging stock twice.
const IdempotencyKeyHeader = "Idempotency-Key"

// Checkouter runs the checkout saga. Implemented by Workflow; narrowed to an
// interface for handler tests.
type Checkouter interface {
	Checkout(ctx context.Context, userID uuid.UUID, idempotencyKey string) (*order.Order, error)
}

type Handler struct {
	workflow Checkouter
}

func NewHandler(workflow Checkouter) *Handler {
	return &Handler{workflow: workflow}
}

// HandleCheckout serves POST /checkout. The request has no body; it operates
// on the caller's cart.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing user session")
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))

	ord, err := h.workflow.Checkout(r.Context(), userID, idempotencyKey)
	if err != nil {
		h.respondCheckoutError(w, err)
		return
	}
	httpx.RespondJSON(w, http.StatusCreated, ord)
}

func (h *Handler) respondCheckoutError(w http.ResponseWriter, err error) {
	var bookMissing *BookNotFoundError
	var insufficient *stock.InsufficientStockError

	switch {
	case errors.Is(err, ErrEmptyCart):
		httpx.RespondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.As(err, &bookMissing):
		httpx.RespondError(w, http.StatusNotFound, "book_not_found", err.Error())
	case errors.As(err, &insufficient):
		httpx.RespondError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, ErrClaimCodeExhausted):
		httpx.RespondError(w, http.StatusConflict, "claim_code_conflict", err.Error())
	case errors.Is(err, ErrRateLimited):
		httpx.RespondError(w, http.StatusTooManyRequests, "rate_limited", err.Error())
	case errors.Is(err, ErrPersistence):
		httpx.RespondError(w, http.StatusServiceUnavailable, "persistence_failure", "checkout could not be committed, please retry")
	default:
		httpx.RespondError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
