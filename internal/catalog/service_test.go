// internal/catalog/service_test.go
package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhaven/internal/stock"
	"bookhaven/pkg/logger"
)

// stubOrders is an OrderReferences with a fixed answer.
type stubOrders struct {
	referenced bool
}

func (s stubOrders) HasOrdersForBook(context.Context, uuid.UUID) (bool, error) {
	return s.referenced, nil
}

func newCatalogService(t *testing.T, referenced bool) (Service, *stock.MemoryLedger) {
	t.Helper()
	ledger := stock.NewMemoryLedger()
	return NewService(NewMemoryRepository(), ledger, stubOrders{referenced: referenced}, logger.NewNop()), ledger
}

func validParams() NewBookParams {
	return NewBookParams{
		ISBN:       uuid.NewString(),
		Title:      "The Go Programming Language",
		Author:     "Donovan & Kernighan",
		PriceCents: 3999,
		Stock:      12,
	}
}

func TestAddBookSeedsLedger(t *testing.T) {
	svc, ledger := newCatalogService(t, false)

	book, err := svc.AddBook(context.Background(), validParams())
	require.NoError(t, err)

	available, err := ledger.Available(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, available)
}

func TestAddBookValidation(t *testing.T) {
	svc, _ := newCatalogService(t, false)
	ctx := context.Background()

	p := validParams()
	p.PriceCents = -1
	_, err := svc.AddBook(ctx, p)
	assert.Error(t, err)

	p = validParams()
	p.DiscountBps = 10001
	_, err = svc.AddBook(ctx, p)
	assert.Error(t, err)

	p = validParams()
	p.Title = ""
	_, err = svc.AddBook(ctx, p)
	assert.Error(t, err)
}

func TestAddBookDuplicateISBN(t *testing.T) {
	svc, _ := newCatalogService(t, false)
	ctx := context.Background()

	p := validParams()
	_, err := svc.AddBook(ctx, p)
	require.NoError(t, err)

	_, err = svc.AddBook(ctx, p)
	assert.ErrorIs(t, err, ErrDuplicateISBN)
}

func TestRestockUpdatesBothCounters(t *testing.T) {
	svc, ledger := newCatalogService(t, false)
	ctx := context.Background()

	book, err := svc.AddBook(ctx, validParams())
	require.NoError(t, err)

	updated, err := svc.Restock(ctx, book.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Stock)

	available, err := ledger.Available(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, available)

	_, err = svc.Restock(ctx, book.ID, 0)
	assert.Error(t, err)
	_, err = svc.Restock(ctx, uuid.New(), 5)
	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRemoveBook(t *testing.T) {
	svc, ledger := newCatalogService(t, false)
	ctx := context.Background()

	book, err := svc.AddBook(ctx, validParams())
	require.NoError(t, err)
	require.NoError(t, svc.RemoveBook(ctx, book.ID))

	_, err = svc.GetBook(ctx, book.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)
	_, err = ledger.Available(book.ID)
	assert.ErrorIs(t, err, stock.ErrUnknownBook)
}

func TestRemoveBookReferencedByOrders(t *testing.T) {
	svc, _ := newCatalogService(t, true)
	ctx := context.Background()

	book, err := svc.AddBook(ctx, validParams())
	require.NoError(t, err)

	err = svc.RemoveBook(ctx, book.ID)
	assert.ErrorIs(t, err, ErrBookReferenced)

	// Still present.
	_, err = svc.GetBook(ctx, book.ID)
	assert.NoError(t, err)
}

func TestLoadLedger(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	first := &Book{ID: uuid.New(), ISBN: uuid.NewString(), Title: "One", Author: "A", PriceCents: 100, Stock: 3}
	second := &Book{ID: uuid.New(), ISBN: uuid.NewString(), Title: "Two", Author: "B", PriceCents: 200, Stock: 7}
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, second))

	ledger := stock.NewMemoryLedger()
	require.NoError(t, LoadLedger(ctx, repo, ledger))

	available, err := ledger.Available(first.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, available)
	available, err = ledger.Available(second.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, available)
}
