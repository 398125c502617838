// internal/cart/service.go
package cart

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for cart mutation. Every mutation is applied
// under the owner's cart lock and recomputes the preview totals from current
// catalog prices.
type Service interface {
	// Get returns the user's cart, an empty one if none exists yet.
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// AddBook increments the book's quantity by one (creating the line at
	// quantity one). Fails with ErrQuantityLimit above the configured
	// ceiling.
	AddBook(ctx context.Context, userID, bookID uuid.UUID) (*Cart, error)

	// RemoveBook drops the book's line. Removing an absent book is a no-op,
	// keeping the operation idempotent with respect to final state.
	RemoveBook(ctx context.Context, userID, bookID uuid.UUID) (*Cart, error)

	// SetQuantity sets the book's quantity; zero removes the line.
	SetQuantity(ctx context.Context, userID, bookID uuid.UUID, qty int) (*Cart, error)

	// Clear empties the cart.
	Clear(ctx context.Context, userID uuid.UUID) (*Cart, error)
}
