// internal/catalog/memory.go
package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository used by tests and local runs.
type MemoryRepository struct {
	mu    sync.RWMutex
	books map[uuid.UUID]*Book
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{books: make(map[uuid.UUID]*Book)}
}

func (r *MemoryRepository) Insert(_ context.Context, book *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.books {
		if existing.ISBN != "" && existing.ISBN == book.ISBN {
			return ErrDuplicateISBN
		}
	}
	now := time.Now().UTC()
	cp := *book
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.books[cp.ID] = &cp
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (*Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	cp := *book
	return &cp, nil
}

func (r *MemoryRepository) GetMany(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[uuid.UUID]*Book, len(ids))
	for _, id := range ids {
		if book, ok := r.books[id]; ok {
			cp := *book
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Book, 0, len(r.books))
	for _, book := range r.books {
		cp := *book
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepository) AdjustStock(_ context.Context, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, ok := r.books[id]
	if !ok {
		return ErrBookNotFound
	}
	if book.Stock+delta < 0 {
		return errors.New("stock underflow")
	}
	book.Stock += delta
	book.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}
