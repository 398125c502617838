// internal/cart/implementation.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bookhaven/internal/catalog"
	"bookhaven/internal/pricing"
	"bookhaven/pkg/logger"
)

// DefaultMaxQuantity is the per-line quantity ceiling when none is
// configured.
const DefaultMaxQuantity = 10

// service implements the Service interface.
type service struct {
	store  Store
	locks  *Locks
	books  catalog.Repository
	maxQty int
	now    func() time.Time
	log    *logger.Logger
}

// NewService creates a new cart service instance. locks must be the same
// instance handed to the checkout workflow so cart mutation and checkout on
// one user exclude each other.
func NewService(store Store, locks *Locks, books catalog.Repository, maxQty int, log *logger.Logger) Service {
	if maxQty <= 0 {
		maxQty = DefaultMaxQuantity
	}
	return &service{
		store:  store,
		locks:  locks,
		books:  books,
		maxQty: maxQty,
		now:    time.Now,
		log:    log.With("component", "cart"),
	}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	release := s.locks.Acquire(userID)
	defer release()

	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) AddBook(ctx context.Context, userID, bookID uuid.UUID) (*Cart, error) {
	if _, err := s.books.Get(ctx, bookID); err != nil {
		return nil, err
	}

	return s.mutate(ctx, userID, func(c *Cart) error {
		qty := c.Quantity(bookID) + 1
		if qty > s.maxQty {
			return ErrQuantityLimit
		}
		c.setQuantity(bookID, qty)
		return nil
	})
}

func (s *service) RemoveBook(ctx context.Context, userID, bookID uuid.UUID) (*Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) error {
		c.setQuantity(bookID, 0)
		return nil
	})
}

func (s *service) SetQuantity(ctx context.Context, userID, bookID uuid.UUID, qty int) (*Cart, error) {
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}
	if qty > s.maxQty {
		return nil, ErrQuantityLimit
	}
	if qty > 0 {
		if _, err := s.books.Get(ctx, bookID); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, userID, func(c *Cart) error {
		c.setQuantity(bookID, qty)
		return nil
	})
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	return s.mutate(ctx, userID, func(c *Cart) error {
		c.Clear()
		return nil
	})
}

// mutate applies fn to the user's cart under its lock, recomputes totals and
// saves.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, fn func(*Cart) error) (*Cart, error) {
	release := s.locks.Acquire(userID)
	defer release()

	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, c); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	c, err := s.store.Get(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return NewCart(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return c, nil
}

// recompute refreshes the preview totals from current catalog prices. Lines
// whose book vanished from the catalog contribute nothing; checkout is where
// stale references become a hard error.
func (s *service) recompute(ctx context.Context, c *Cart) error {
	c.TotalQuantity = 0
	c.TotalPriceCents = 0
	if c.IsEmpty() {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(c.Lines))
	for _, line := range c.Lines {
		ids = append(ids, line.BookID)
	}
	books, err := s.books.GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("price cart: %w", err)
	}

	now := s.now()
	for _, line := range c.Lines {
		c.TotalQuantity += line.Quantity
		book, ok := books[line.BookID]
		if !ok {
			continue
		}
		priced := pricing.ComputeLine(book.PriceCents, book.DiscountBps, book.DiscountWindow(), now, line.Quantity)
		c.TotalPriceCents += priced.SubtotalCents
	}
	return nil
}
