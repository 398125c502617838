// internal/order/implementation.go
package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"bookhaven/internal/stock"
	"bookhaven/pkg/logger"
)

// service implements the Service interface.
type service struct {
	repo   Repository
	ledger stock.Ledger
	log    *logger.Logger
}

// NewService creates a new order service instance.
func NewService(repo Repository, ledger stock.Ledger, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		ledger: ledger,
		log:    log.With("component", "order"),
	}
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	ord, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if ord.UserID != userID {
		// Owner-scoped lookup: hide the existence of other users' orders.
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) GetByClaimCode(ctx context.Context, code string) (*Order, error) {
	return s.repo.GetByClaimCode(ctx, code)
}

func (s *service) Transition(ctx context.Context, orderID uuid.UUID, to Status) (*Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	ord, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !ord.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ord.Status, to)
	}

	if to == StatusCancelled {
		// Cancellation is the only post-checkout path that mutates the
		// ledger upward: restore the durable count and the ledger together.
		if err := s.repo.Cancel(ctx, ord, ord.Status); err != nil {
			return nil, err
		}
		for _, line := range ord.Lines {
			if err := s.ledger.Restock(line.BookID, line.Quantity); err != nil {
				s.log.Error("ledger restock failed after cancellation", "order_id", ord.ID, "book_id", line.BookID, "error", err)
			}
		}
		s.log.Info("order cancelled", "order_id", ord.ID, "from", ord.Status)
	} else {
		if err := s.repo.UpdateStatus(ctx, orderID, ord.Status, to); err != nil {
			return nil, err
		}
		s.log.Info("order status updated", "order_id", ord.ID, "from", ord.Status, "to", to)
	}

	return s.repo.GetByID(ctx, orderID)
}
