// internal/announce/domain.go
package announce

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrEmptyDescription     = errors.New("announcement description must not be empty")
	ErrExpiryBeforePost     = errors.New("expiry must be after the posting time")
)

// Announcement is a store-wide notice. PostedAt may be in the future for
// scheduled announcements and ExpiresAt may be nil for open-ended ones.
type Announcement struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Description string     `db:"description" json:"description"`
	PostedAt    time.Time  `db:"posted_at" json:"postedAt"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// ActiveAt reports whether the announcement should be visible at the given
// instant: the posting time has passed and the expiry, if any, has not.
func (a *Announcement) ActiveAt(now time.Time) bool {
	if now.Before(a.PostedAt) {
		return false
	}
	return a.ExpiresAt == nil || now.Before(*a.ExpiresAt)
}
