// internal/cart/domain.go
package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrQuantityLimit   = errors.New("book quantity limit reached")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// Line is one (book, quantity) pair. A book appears at most once per cart.
type Line struct {
	BookID   uuid.UUID `json:"book_id"`
	Quantity int       `json:"quantity"`
}

// Cart is the mutable per-user bag of lines. Totals are a live preview
// recomputed from current catalog prices on every mutation; they are not a
// purchase commitment.
type Cart struct {
	UserID          uuid.UUID `json:"user_id"`
	Lines           []Line    `json:"lines"`
	TotalQuantity   int       `json:"total_quantity"`
	TotalPriceCents int64     `json:"total_price_cents"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewCart returns an empty cart for the user. Carts are created lazily on
// the first add.
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{UserID: userID}
}

// line returns a pointer into Lines for the given book, or nil.
func (c *Cart) line(bookID uuid.UUID) *Line {
	for i := range c.Lines {
		if c.Lines[i].BookID == bookID {
			return &c.Lines[i]
		}
	}
	return nil
}

// Quantity returns the current quantity for a book, zero if absent.
func (c *Cart) Quantity(bookID uuid.UUID) int {
	if l := c.line(bookID); l != nil {
		return l.Quantity
	}
	return 0
}

// setQuantity applies qty for the book; qty zero removes the line.
func (c *Cart) setQuantity(bookID uuid.UUID, qty int) {
	if qty == 0 {
		for i := range c.Lines {
			if c.Lines[i].BookID == bookID {
				c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
				return
			}
		}
		return
	}
	if l := c.line(bookID); l != nil {
		l.Quantity = qty
		return
	}
	c.Lines = append(c.Lines, Line{BookID: bookID, Quantity: qty})
}

// Clear empties the cart in place. The cart itself survives checkout; only
// its lines and totals reset.
func (c *Cart) Clear() {
	c.Lines = nil
	c.TotalQuantity = 0
	c.TotalPriceCents = 0
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
