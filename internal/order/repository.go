// internal/order/repository.go
package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the durable store for orders. Create is the transactional
// boundary of checkout: the order row, its snapshot lines, the stock
// decrement and the OrderCreated outbox record commit or roll back together.
type Repository interface {
	// Create persists the order atomically with its lines, decrements each
	// book's durable stock by the line quantity and enqueues the
	// OrderCreated outbox event. Returns ErrClaimCodeTaken on a claim-code
	// collision.
	Create(ctx context.Context, ord *Order) error

	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByClaimCode(ctx context.Context, code string) (*Order, error)

	// GetByIdempotencyKey returns the order a prior checkout with this key
	// produced, or ErrOrderNotFound.
	GetByIdempotencyKey(ctx context.Context, key string) (*Order, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// UpdateStatus performs a compare-and-set transition. Returns
	// ErrInvalidTransition when the order is no longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error

	// Cancel transitions the order from from to Cancelled and restores each
	// line's quantity to the book's durable stock, all in one transaction.
	Cancel(ctx context.Context, ord *Order, from Status) error

	// HasOrdersForBook reports whether any order line references the book.
	HasOrdersForBook(ctx context.Context, bookID uuid.UUID) (bool, error)
}
