// internal/order/postgres.go
package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"bookhaven/internal/outbox"
)

// ErrDuplicateIdempotencyKey reports that another checkout with the same
// idempotency key committed first. Callers fetch and return that order.
var ErrDuplicateIdempotencyKey = errors.New("idempotency key already used")

// PostgresRepository persists orders, their snapshot lines and the outbox
// record in a single transaction, and doubles as the outbox repository for
// the poller.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ord *Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Durable stock decrement. The in-memory ledger already guards against
	// oversell; the stock >= quantity predicate keeps the database row from
	// ever going negative regardless.
	for _, line := range ord.Lines {
		res, err := tx.ExecContext(ctx, `
			UPDATE books
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1
		`, line.Quantity, line.BookID)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("stock underflow for book %s", line.BookID)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, subtotal_cents, discount_cents, total_cents, claim_code, status, idempotency_key, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
	`, ord.ID, ord.UserID, ord.SubtotalCents, ord.DiscountCents, ord.TotalCents, ord.ClaimCode, ord.Status, ord.IdempotencyKey, ord.OrderDate)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if strings.Contains(pqErr.Constraint, "claim_code") {
				return ErrClaimCodeTaken
			}
			if strings.Contains(pqErr.Constraint, "idempotency") {
				return ErrDuplicateIdempotencyKey
			}
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range ord.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, book_id, title, quantity, unit_price_cents, discount_bps, discount_cents, subtotal_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, ord.ID, line.BookID, line.Title, line.Quantity, line.UnitPriceCents, line.DiscountBps, line.DiscountCents, line.SubtotalCents)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	payload, err := json.Marshal(CreatedEvent{
		OrderID:    ord.ID,
		UserID:     ord.UserID,
		ClaimCode:  ord.ClaimCode,
		TotalCents: ord.TotalCents,
		OrderDate:  ord.OrderDate,
	})
	if err != nil {
		return fmt.Errorf("marshal order created event: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox (event_type, payload)
		VALUES ($1, $2)
	`, outbox.EventTypeOrderCreated, payload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.getBy(ctx, `SELECT * FROM orders WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByClaimCode(ctx context.Context, code string) (*Order, error) {
	return r.getBy(ctx, `SELECT * FROM orders WHERE claim_code = $1`, code)
}

func (r *PostgresRepository) GetByIdempotencyKey(ctx context.Context, key string) (*Order, error) {
	return r.getBy(ctx, `SELECT * FROM orders WHERE idempotency_key = $1`, key)
}

func (r *PostgresRepository) getBy(ctx context.Context, query string, arg interface{}) (*Order, error) {
	var ord Order
	err := r.db.GetContext(ctx, &ord, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadLines(ctx, &ord); err != nil {
		return nil, err
	}
	return &ord, nil
}

func (r *PostgresRepository) loadLines(ctx context.Context, ord *Order) error {
	err := r.db.SelectContext(ctx, &ord.Lines, `
		SELECT book_id, title, quantity, unit_price_cents, discount_bps, discount_cents, subtotal_cents
		FROM order_lines WHERE order_id = $1
	`, ord.ID)
	if err != nil {
		return fmt.Errorf("load order lines: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	var orders []*Order
	err := r.db.SelectContext(ctx, &orders, `SELECT * FROM orders WHERE user_id = $1 ORDER BY order_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for _, ord := range orders {
		if err := r.loadLines(ctx, ord); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (r *PostgresRepository) Cancel(ctx context.Context, ord *Order, from Status) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, StatusCancelled, ord.ID, from)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvalidTransition
	}

	for _, line := range ord.Lines {
		_, err = tx.ExecContext(ctx, `
			UPDATE books SET stock = stock + $1, updated_at = NOW() WHERE id = $2
		`, line.Quantity, line.BookID)
		if err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) HasOrdersForBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM order_lines WHERE book_id = $1)`, bookID)
	if err != nil {
		return false, fmt.Errorf("check order references: %w", err)
	}
	return exists, nil
}

// GetUnprocessed implements outbox.Repository.
func (r *PostgresRepository) GetUnprocessed(ctx context.Context, limit int) ([]*outbox.Event, error) {
	var events []*outbox.Event
	err := r.db.SelectContext(ctx, &events, `
		SELECT id, event_type, payload, created_at, processed_at
		FROM outbox WHERE processed_at IS NULL ORDER BY id LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox events: %w", err)
	}
	return events, nil
}

// MarkProcessed implements outbox.Repository.
func (r *PostgresRepository) MarkProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE outbox SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event processed: %w", err)
	}
	return nil
}
