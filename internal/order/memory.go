// internal/order/memory.go
package order

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookhaven/internal/catalog"
	"bookhaven/internal/outbox"
)

// MemoryRepository is an in-memory Repository (and outbox.Repository) used by
// tests and local runs. The "durable" stock copy lives in the catalog
// repository it is handed, mirroring how the postgres implementation updates
// the books table.
type MemoryRepository struct {
	mu         sync.RWMutex
	orders     map[uuid.UUID]*Order
	claimCodes map[string]uuid.UUID
	idemKeys   map[string]uuid.UUID
	events     []*outbox.Event
	nextEvent  int64
	books      catalog.Repository
}

func NewMemoryRepository(books catalog.Repository) *MemoryRepository {
	return &MemoryRepository{
		orders:     make(map[uuid.UUID]*Order),
		claimCodes: make(map[string]uuid.UUID),
		idemKeys:   make(map[string]uuid.UUID),
		nextEvent:  1,
		books:      books,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, ord *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.claimCodes[ord.ClaimCode]; taken {
		return ErrClaimCodeTaken
	}
	if ord.IdempotencyKey != "" {
		if _, taken := r.idemKeys[ord.IdempotencyKey]; taken {
			return ErrDuplicateIdempotencyKey
		}
	}

	for _, line := range ord.Lines {
		if err := r.books.AdjustStock(ctx, line.BookID, -line.Quantity); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	cp := *ord
	cp.Lines = append([]Line(nil), ord.Lines...)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.orders[cp.ID] = &cp
	r.claimCodes[cp.ClaimCode] = cp.ID
	if cp.IdempotencyKey != "" {
		r.idemKeys[cp.IdempotencyKey] = cp.ID
	}

	payload, err := json.Marshal(CreatedEvent{
		OrderID:    cp.ID,
		UserID:     cp.UserID,
		ClaimCode:  cp.ClaimCode,
		TotalCents: cp.TotalCents,
		OrderDate:  cp.OrderDate,
	})
	if err != nil {
		return err
	}
	r.events = append(r.events, &outbox.Event{
		ID:        r.nextEvent,
		EventType: outbox.EventTypeOrderCreated,
		Payload:   payload,
		CreatedAt: now,
	})
	r.nextEvent++

	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ord, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(ord), nil
}

func (r *MemoryRepository) GetByClaimCode(_ context.Context, code string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.claimCodes[code]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(r.orders[id]), nil
}

func (r *MemoryRepository) GetByIdempotencyKey(_ context.Context, key string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.idemKeys[key]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return copyOrder(r.orders[id]), nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Order
	for _, ord := range r.orders {
		if ord.UserID == userID {
			out = append(out, copyOrder(ord))
		}
	}
	return out, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ord, ok := r.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	if ord.Status != from {
		return ErrInvalidTransition
	}
	ord.Status = to
	ord.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) Cancel(ctx context.Context, ord *Order, from Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[ord.ID]
	if !ok {
		return ErrOrderNotFound
	}
	if stored.Status != from {
		return ErrInvalidTransition
	}
	for _, line := range stored.Lines {
		if err := r.books.AdjustStock(ctx, line.BookID, line.Quantity); err != nil {
			return err
		}
	}
	stored.Status = StatusCancelled
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) HasOrdersForBook(_ context.Context, bookID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, ord := range r.orders {
		for _, line := range ord.Lines {
			if line.BookID == bookID {
				return true, nil
			}
		}
	}
	return false, nil
}

// GetUnprocessed implements outbox.Repository.
func (r *MemoryRepository) GetUnprocessed(_ context.Context, limit int) ([]*outbox.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*outbox.Event
	for _, event := range r.events {
		if event.ProcessedAt == nil {
			out = append(out, event)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// MarkProcessed implements outbox.Repository.
func (r *MemoryRepository) MarkProcessed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range r.events {
		if event.ID == id {
			now := time.Now().UTC()
			event.ProcessedAt = &now
			return nil
		}
	}
	return nil
}

func copyOrder(ord *Order) *Order {
	cp := *ord
	cp.Lines = append([]Line(nil), ord.Lines...)
	return &cp
}
