// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresRepository persists books in the books table.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, book *Book) error {
	query := `
		INSERT INTO books (id, isbn, title, author, price_cents, discount_bps, discount_start, discount_end, stock)
		VALUES (:id, :isbn, :title, :author, :price_cents, :discount_bps, :discount_start, :discount_end, :stock)
	`
	_, err := r.db.NamedExecContext(ctx, query, book)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateISBN
		}
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Book, error) {
	var book Book
	err := r.db.GetContext(ctx, &book, `SELECT * FROM books WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

func (r *PostgresRepository) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Book, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*Book{}, nil
	}
	var books []Book
	err := r.db.SelectContext(ctx, &books, `SELECT * FROM books WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get books: %w", err)
	}
	out := make(map[uuid.UUID]*Book, len(books))
	for i := range books {
		out[books[i].ID] = &books[i]
	}
	return out, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*Book, error) {
	var books []*Book
	err := r.db.SelectContext(ctx, &books, `SELECT * FROM books ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (r *PostgresRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2 AND stock + $1 >= 0
	`, delta, id)
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookNotFound
	}
	return nil
}
