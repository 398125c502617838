// internal/catalog/service.go
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NewBookParams are the attributes needed to add a book to the catalog.
type NewBookParams struct {
	ISBN          string     `json:"isbn"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	PriceCents    int64      `json:"price_cents"`
	DiscountBps   int        `json:"discount_bps"`
	DiscountStart *time.Time `json:"discount_start,omitempty"`
	DiscountEnd   *time.Time `json:"discount_end,omitempty"`
	Stock         int        `json:"stock"`
}

// Service defines the interface for the catalog service.
type Service interface {
	AddBook(ctx context.Context, params NewBookParams) (*Book, error)
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	ListBooks(ctx context.Context) ([]*Book, error)
	Restock(ctx context.Context, id uuid.UUID, qty int) (*Book, error)
	RemoveBook(ctx context.Context, id uuid.UUID) error
}
