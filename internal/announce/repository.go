// internal/announce/repository.go
package announce

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for announcements.
type Repository interface {
	Insert(ctx context.Context, a *Announcement) error
	Get(ctx context.Context, id uuid.UUID) (*Announcement, error)
	// ListActive returns announcements active at the given instant, newest
	// posting time first.
	ListActive(ctx context.Context, now time.Time) ([]*Announcement, error)
	UpdateExpiry(ctx context.Context, id uuid.UUID, expiresAt *time.Time, updatedAt time.Time) error
}
