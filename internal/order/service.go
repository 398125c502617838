// internal/order/service.go
package order

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the read and fulfillment interface for orders. Creation
// happens exclusively through the checkout workflow.
type Service interface {
	// GetOrder returns the order if it belongs to userID.
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// GetByClaimCode is the staff pickup lookup.
	GetByClaimCode(ctx context.Context, code string) (*Order, error)

	// Transition drives the status state machine. Transitioning to
	// Cancelled restores the cancelled quantities to stock, both durably
	// and in the ledger. Transitions out of terminal states are rejected.
	Transition(ctx context.Context, orderID uuid.UUID, to Status) (*Order, error)
}
