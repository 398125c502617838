// internal/announce/postgres.go
package announce

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository stores announcements in Postgres.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, a *Announcement) error {
	const query = `
		INSERT INTO announcements (id, description, posted_at, expires_at, created_at, updated_at)
		VALUES (:id, :description, :posted_at, :expires_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("failed to insert announcement: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Announcement, error) {
	var a Announcement
	err := r.db.GetContext(ctx, &a, `SELECT * FROM announcements WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnnouncementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return &a, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, now time.Time) ([]*Announcement, error) {
	const query = `
		SELECT * FROM announcements
		WHERE posted_at <= $1 AND (expires_at IS NULL OR expires_at > $1)
		ORDER BY posted_at DESC`
	announcements := []*Announcement{}
	if err := r.db.SelectContext(ctx, &announcements, query, now); err != nil {
		return nil, fmt.Errorf("failed to list active announcements: %w", err)
	}
	return announcements, nil
}

func (r *PostgresRepository) UpdateExpiry(ctx context.Context, id uuid.UUID, expiresAt *time.Time, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE announcements SET expires_at = $1, updated_at = $2 WHERE id = $3`,
		expiresAt, updatedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update announcement expiry: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrAnnouncementNotFound
	}
	return nil
}
