// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bookhaven/internal/stock"
	"bookhaven/pkg/logger"
)

// OrderReferences answers whether historical orders still reference a book.
// Implemented by the order repository.
type OrderReferences interface {
	HasOrdersForBook(ctx context.Context, bookID uuid.UUID) (bool, error)
}

// service implements the Service interface.
type service struct {
	repo   Repository
	ledger stock.Ledger
	orders OrderReferences
	log    *logger.Logger
}

// NewService creates a new catalog service instance. The ledger is kept in
// sync with every durable stock change so checkout reservations see the same
// counters the database holds.
func NewService(repo Repository, ledger stock.Ledger, orders OrderReferences, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		ledger: ledger,
		orders: orders,
		log:    log.With("component", "catalog"),
	}
}

func (s *service) AddBook(ctx context.Context, params NewBookParams) (*Book, error) {
	book := &Book{
		ID:            uuid.New(),
		ISBN:          params.ISBN,
		Title:         params.Title,
		Author:        params.Author,
		PriceCents:    params.PriceCents,
		DiscountBps:   params.DiscountBps,
		DiscountStart: params.DiscountStart,
		DiscountEnd:   params.DiscountEnd,
		Stock:         params.Stock,
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, book); err != nil {
		return nil, err
	}
	s.ledger.SetStock(book.ID, book.Stock)

	s.log.Info("book added", "book_id", book.ID, "title", book.Title, "stock", book.Stock)
	return book, nil
}

func (s *service) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) ListBooks(ctx context.Context) ([]*Book, error) {
	return s.repo.List(ctx)
}

func (s *service) Restock(ctx context.Context, id uuid.UUID, qty int) (*Book, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("restock quantity must be positive, got %d", qty)
	}
	if err := s.repo.AdjustStock(ctx, id, qty); err != nil {
		return nil, err
	}
	if err := s.ledger.Restock(id, qty); err != nil {
		return nil, fmt.Errorf("ledger restock: %w", err)
	}
	s.log.Info("book restocked", "book_id", id, "quantity", qty)
	return s.repo.Get(ctx, id)
}

// RemoveBook deletes a book from the catalog. Books referenced by historical
// orders are rejected: orders carry price snapshots, not live references, so
// a deletion would only orphan stock history, never order data.
func (s *service) RemoveBook(ctx context.Context, id uuid.UUID) error {
	referenced, err := s.orders.HasOrdersForBook(ctx, id)
	if err != nil {
		return fmt.Errorf("check order references: %w", err)
	}
	if referenced {
		return ErrBookReferenced
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.ledger.Forget(id)
	s.log.Info("book removed", "book_id", id)
	return nil
}

// LoadLedger seeds the stock ledger from the durable catalog. Called once at
// startup before the ledger accepts reservations.
func LoadLedger(ctx context.Context, repo Repository, ledger stock.Ledger) error {
	books, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	for _, book := range books {
		ledger.SetStock(book.ID, book.Stock)
	}
	return nil
}
