// internal/cart/store.go
package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store persists carts keyed by owner. Implementations do no locking of
// their own; callers serialize access per cart through Locks.
type Store interface {
	// Get returns the user's cart or ErrCartNotFound.
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
}

// Locks hands out one mutex per cart so cart mutation and checkout on the
// same user are mutually exclusive while unrelated carts stay fully parallel.
type Locks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewLocks() *Locks {
	return &Locks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Acquire locks the user's cart and returns the release function.
func (l *Locks) Acquire(userID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[userID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
