// internal/announce/service.go
package announce

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CreateParams describes a new announcement. PostedAt defaults to now when
// nil; Recipients limits the live push to specific users, an empty list
// means everyone.
type CreateParams struct {
	Description string
	PostedAt    *time.Time
	ExpiresAt   *time.Time
	Recipients  []uuid.UUID
}

// Service manages announcements and their fan-out to connected clients.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Announcement, error)
	UpdateExpiry(ctx context.Context, id uuid.UUID, expiresAt *time.Time) (*Announcement, error)
	// ListActive is the catch-up path: announcements currently visible,
	// regardless of who was connected when they were posted.
	ListActive(ctx context.Context) ([]*Announcement, error)
	// PushActive re-delivers the active announcements to a single user's
	// open streams.
	PushActive(ctx context.Context, userID uuid.UUID) error
}
