// internal/announce/memory.go
package announce

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for tests.
type MemoryRepository struct {
	mu            sync.RWMutex
	announcements map[uuid.UUID]*Announcement
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{announcements: make(map[uuid.UUID]*Announcement)}
}

func (r *MemoryRepository) Insert(_ context.Context, a *Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.announcements[a.ID] = &cp
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (*Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.announcements[id]
	if !ok {
		return nil, ErrAnnouncementNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) ListActive(_ context.Context, now time.Time) ([]*Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	active := []*Announcement{}
	for _, a := range r.announcements {
		if a.ActiveAt(now) {
			cp := *a
			active = append(active, &cp)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].PostedAt.After(active[j].PostedAt)
	})
	return active, nil
}

func (r *MemoryRepository) UpdateExpiry(_ context.Context, id uuid.UUID, expiresAt *time.Time, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.announcements[id]
	if !ok {
		return ErrAnnouncementNotFound
	}
	a.ExpiresAt = expiresAt
	a.UpdatedAt = updatedAt
	return nil
}
