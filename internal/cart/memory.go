// internal/cart/memory.go
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local runs. Carts are
// stored as JSON copies so callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[uuid.UUID][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[uuid.UUID][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, userID uuid.UUID) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.carts[userID]
	if !ok {
		return nil, ErrCartNotFound
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MemoryStore) Save(_ context.Context, cart *Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.carts[cart.UserID] = data
	s.mu.Unlock()
	return nil
}
