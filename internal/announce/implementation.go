// internal/announce/implementation.go
package announce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookhaven/internal/notify"
	"bookhaven/pkg/logger"
)

type service struct {
	repo Repository
	hub  *notify.Hub
	log  *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, hub *notify.Hub, log *logger.Logger) Service {
	return &service{
		repo: repo,
		hub:  hub,
		log:  log.With("service", "announce"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Announcement, error) {
	if strings.TrimSpace(params.Description) == "" {
		return nil, ErrEmptyDescription
	}

	now := s.now()
	postedAt := now
	if params.PostedAt != nil {
		postedAt = params.PostedAt.UTC()
	}
	if params.ExpiresAt != nil && !params.ExpiresAt.After(postedAt) {
		return nil, ErrExpiryBeforePost
	}

	a := &Announcement{
		ID:          uuid.New(),
		Description: params.Description,
		PostedAt:    postedAt,
		ExpiresAt:   params.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}

	// Scheduled announcements are pushed immediately too. Receivers apply
	// the posting time against their own clock, so gating here with the
	// server clock would only add a second source of skew.
	s.broadcast(a, params.Recipients)

	s.log.Info("announcement created", "announcement_id", a.ID, "posted_at", a.PostedAt)
	return a, nil
}

func (s *service) UpdateExpiry(ctx context.Context, id uuid.UUID, expiresAt *time.Time) (*Announcement, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if expiresAt != nil && !expiresAt.After(a.PostedAt) {
		return nil, ErrExpiryBeforePost
	}

	now := s.now()
	if err := s.repo.UpdateExpiry(ctx, id, expiresAt, now); err != nil {
		return nil, err
	}
	a.ExpiresAt = expiresAt
	a.UpdatedAt = now

	// Push the updated record so connected clients can drop or extend it
	// without waiting for a refresh.
	s.broadcast(a, nil)

	s.log.Info("announcement expiry updated", "announcement_id", a.ID)
	return a, nil
}

func (s *service) ListActive(ctx context.Context) ([]*Announcement, error) {
	return s.repo.ListActive(ctx, s.now())
}

func (s *service) PushActive(ctx context.Context, userID uuid.UUID) error {
	active, err := s.repo.ListActive(ctx, s.now())
	if err != nil {
		return fmt.Errorf("failed to load active announcements: %w", err)
	}
	group := notify.UserGroup(userID)
	for _, a := range active {
		s.hub.Broadcast(notify.Event{
			Group: group,
			Type:  notify.EventTypeAnnouncement,
			Data:  a,
		})
	}
	return nil
}

func (s *service) broadcast(a *Announcement, recipients []uuid.UUID) {
	if len(recipients) == 0 {
		s.hub.Broadcast(notify.Event{
			Group: notify.GroupAll,
			Type:  notify.EventTypeAnnouncement,
			Data:  a,
		})
		return
	}
	for _, userID := range recipients {
		s.hub.Broadcast(notify.Event{
			Group: notify.UserGroup(userID),
			Type:  notify.EventTypeAnnouncement,
			Data:  a,
		})
	}
}
