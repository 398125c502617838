// internal/catalog/repository.go
package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the storage port for catalog books.
type Repository interface {
	Insert(ctx context.Context, book *Book) error
	Get(ctx context.Context, id uuid.UUID) (*Book, error)

	// GetMany returns the books that exist among ids, keyed by ID. Callers
	// detect stale references by a missing key.
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Book, error)

	List(ctx context.Context) ([]*Book, error)

	// AdjustStock adds delta (which may be negative) to a book's durable
	// stock count.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error

	Delete(ctx context.Context, id uuid.UUID) error
}
