// internal/order/service_test.go
package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhaven/internal/catalog"
	"bookhaven/internal/stock"
	"bookhaven/pkg/logger"
)

type orderFixture struct {
	svc    Service
	repo   *MemoryRepository
	books  *catalog.MemoryRepository
	ledger *stock.MemoryLedger
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	books := catalog.NewMemoryRepository()
	repo := NewMemoryRepository(books)
	ledger := stock.NewMemoryLedger()
	return &orderFixture{
		svc:    NewService(repo, ledger, logger.NewNop()),
		repo:   repo,
		books:  books,
		ledger: ledger,
	}
}

// placeOrder seeds a book with the given stock and creates a pending order
// for qty of it, the way checkout would.
func (f *orderFixture) placeOrder(t *testing.T, userID uuid.UUID, stockCount, qty int) (*Order, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	book := &catalog.Book{
		ID:         uuid.New(),
		ISBN:       uuid.NewString(),
		Title:      "Stocked Title",
		Author:     "A. Writer",
		PriceCents: 2000,
		Stock:      stockCount,
	}
	require.NoError(t, f.books.Insert(ctx, book))
	f.ledger.SetStock(book.ID, stockCount)

	code, err := GenerateClaimCode()
	require.NoError(t, err)
	ord := &Order{
		ID:     uuid.New(),
		UserID: userID,
		Lines: []Line{{
			BookID:         book.ID,
			Title:          book.Title,
			Quantity:       qty,
			UnitPriceCents: book.PriceCents,
			SubtotalCents:  book.PriceCents * int64(qty),
		}},
		SubtotalCents: book.PriceCents * int64(qty),
		TotalCents:    book.PriceCents * int64(qty),
		ClaimCode:     code,
		Status:        StatusPending,
		OrderDate:     time.Now().UTC(),
	}
	require.NoError(t, f.repo.Create(ctx, ord))

	// Mirror checkout: the ledger reservation was committed.
	res, err := f.ledger.TryReserve(book.ID, qty)
	require.NoError(t, err)
	f.ledger.Commit(res)

	return ord, book.ID
}

func TestGetOrderHidesOtherUsers(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	ord, _ := f.placeOrder(t, owner, 5, 1)

	got, err := f.svc.GetOrder(ctx, owner, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, ord.ID, got.ID)

	_, err = f.svc.GetOrder(ctx, uuid.New(), ord.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetByClaimCode(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	ord, _ := f.placeOrder(t, uuid.New(), 5, 1)

	got, err := f.svc.GetByClaimCode(ctx, ord.ClaimCode)
	require.NoError(t, err)
	assert.Equal(t, ord.ID, got.ID)

	_, err = f.svc.GetByClaimCode(ctx, "NOSUCHCODE")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestTransitionHappyPath(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	ord, _ := f.placeOrder(t, uuid.New(), 5, 1)

	got, err := f.svc.Transition(ctx, ord.ID, StatusOngoing)
	require.NoError(t, err)
	assert.Equal(t, StatusOngoing, got.Status)

	got, err = f.svc.Transition(ctx, ord.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}

func TestTransitionRejectsIllegalMoves(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	ord, _ := f.placeOrder(t, uuid.New(), 5, 1)

	_, err := f.svc.Transition(ctx, ord.ID, StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.svc.Transition(ctx, ord.ID, Status("SHIPPED"))
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTerminalOrdersAreFrozen(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	ord, _ := f.placeOrder(t, uuid.New(), 5, 1)

	_, err := f.svc.Transition(ctx, ord.ID, StatusOngoing)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, ord.ID, StatusCompleted)
	require.NoError(t, err)

	for _, to := range []Status{StatusPending, StatusOngoing, StatusCancelled} {
		_, err := f.svc.Transition(ctx, ord.ID, to)
		assert.ErrorIs(t, err, ErrInvalidTransition, "completed -> %s", to)
	}
}

func TestCancellationRestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	ord, bookID := f.placeOrder(t, uuid.New(), 5, 3)

	// Stock was drawn down by the purchase.
	book, err := f.books.Get(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 2, book.Stock)
	available, err := f.ledger.Available(bookID)
	require.NoError(t, err)
	assert.Equal(t, 2, available)

	got, err := f.svc.Transition(ctx, ord.ID, StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	book, err = f.books.Get(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 5, book.Stock)
	available, err = f.ledger.Available(bookID)
	require.NoError(t, err)
	assert.Equal(t, 5, available)

	// A cancelled order is terminal; cancelling again fails.
	_, err = f.svc.Transition(ctx, ord.ID, StatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancellationFromOngoing(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	ord, bookID := f.placeOrder(t, uuid.New(), 4, 2)

	_, err := f.svc.Transition(ctx, ord.ID, StatusOngoing)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, ord.ID, StatusCancelled)
	require.NoError(t, err)

	available, err := f.ledger.Available(bookID)
	require.NoError(t, err)
	assert.Equal(t, 4, available)
}

func TestListOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	f.placeOrder(t, userID, 5, 1)
	f.placeOrder(t, userID, 5, 2)
	f.placeOrder(t, uuid.New(), 5, 1)

	orders, err := f.svc.ListOrders(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}
