// internal/catalog/domain.go
package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"bookhaven/internal/pricing"
)

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrBookReferenced = errors.New("book is referenced by historical orders")
	ErrDuplicateISBN  = errors.New("a book with this ISBN already exists")
)

// Book is the read-mostly catalog record. Available stock is owned by the
// stock ledger at runtime; the stock column here is the durable copy.
type Book struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ISBN          string     `json:"isbn" db:"isbn"`
	Title         string     `json:"title" db:"title"`
	Author        string     `json:"author" db:"author"`
	PriceCents    int64      `json:"price_cents" db:"price_cents"`
	DiscountBps   int        `json:"discount_bps" db:"discount_bps"`
	DiscountStart *time.Time `json:"discount_start,omitempty" db:"discount_start"`
	DiscountEnd   *time.Time `json:"discount_end,omitempty" db:"discount_end"`
	Stock         int        `json:"stock" db:"stock"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// DiscountWindow returns the book's discount validity window for pricing.
func (b *Book) DiscountWindow() pricing.Window {
	return pricing.Window{Start: b.DiscountStart, End: b.DiscountEnd}
}

// Validate checks the catalog invariants: price never negative, discount
// fraction within [0,1].
func (b *Book) Validate() error {
	if b.PriceCents < 0 {
		return errors.New("price must not be negative")
	}
	if b.DiscountBps < 0 || b.DiscountBps > 10_000 {
		return errors.New("discount must be between 0 and 10000 basis points")
	}
	if b.Stock < 0 {
		return errors.New("stock must not be negative")
	}
	if b.Title == "" {
		return errors.New("title is required")
	}
	return nil
}
