// internal/cart/service_test.go
package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhaven/internal/catalog"
	"bookhaven/pkg/logger"
)

func newTestService(t *testing.T) (Service, *catalog.MemoryRepository) {
	t.Helper()
	repo := catalog.NewMemoryRepository()
	return NewService(NewMemoryStore(), NewLocks(), repo, DefaultMaxQuantity, logger.NewNop()), repo
}

func addBook(t *testing.T, repo *catalog.MemoryRepository, priceCents int64, discountBps int) uuid.UUID {
	t.Helper()
	book := &catalog.Book{
		ID:          uuid.New(),
		ISBN:        uuid.NewString(),
		Title:       "The Test Book",
		Author:      "A. Writer",
		PriceCents:  priceCents,
		DiscountBps: discountBps,
		Stock:       100,
	}
	require.NoError(t, repo.Insert(context.Background(), book))
	return book.ID
}

func TestAddBookIncrementsQuantity(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	bookID := addBook(t, repo, 2000, 0)

	c, err := svc.AddBook(ctx, userID, bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Quantity(bookID))
	assert.Equal(t, int64(2000), c.TotalPriceCents)

	c, err = svc.AddBook(ctx, userID, bookID)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Quantity(bookID))
	assert.Equal(t, 2, c.TotalQuantity)
	assert.Equal(t, int64(4000), c.TotalPriceCents)
}

func TestAddBookUnknownBook(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddBook(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)
}

func TestAddBookQuantityCeiling(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	bookID := addBook(t, repo, 1000, 0)

	for i := 0; i < DefaultMaxQuantity; i++ {
		_, err := svc.AddBook(ctx, userID, bookID)
		require.NoError(t, err)
	}

	_, err := svc.AddBook(ctx, userID, bookID)
	assert.ErrorIs(t, err, ErrQuantityLimit)

	// The cart is unchanged after the rejected add.
	c, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxQuantity, c.Quantity(bookID))
}

func TestSetQuantity(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	bookID := addBook(t, repo, 1500, 0)

	c, err := svc.SetQuantity(ctx, userID, bookID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Quantity(bookID))
	assert.Equal(t, int64(6000), c.TotalPriceCents)

	_, err = svc.SetQuantity(ctx, userID, bookID, -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.SetQuantity(ctx, userID, bookID, DefaultMaxQuantity+1)
	assert.ErrorIs(t, err, ErrQuantityLimit)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	bookID := addBook(t, repo, 1500, 0)

	_, err := svc.SetQuantity(ctx, userID, bookID, 3)
	require.NoError(t, err)

	c, err := svc.SetQuantity(ctx, userID, bookID, 0)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.TotalPriceCents)
}

func TestRemoveBookIsIdempotent(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	bookID := addBook(t, repo, 1500, 0)

	_, err := svc.AddBook(ctx, userID, bookID)
	require.NoError(t, err)

	c, err := svc.RemoveBook(ctx, userID, bookID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	// Removing again, or removing a book that was never added, is a no-op.
	c, err = svc.RemoveBook(ctx, userID, bookID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, err = svc.RemoveBook(ctx, userID, uuid.New())
	assert.NoError(t, err)
}

func TestClear(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	first := addBook(t, repo, 1000, 0)
	second := addBook(t, repo, 2500, 0)

	_, err := svc.AddBook(ctx, userID, first)
	require.NoError(t, err)
	_, err = svc.AddBook(ctx, userID, second)
	require.NoError(t, err)

	c, err := svc.Clear(ctx, userID)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.TotalQuantity)
	assert.Zero(t, c.TotalPriceCents)
}

func TestDiscountedPreviewTotals(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	bookID := addBook(t, repo, 2000, 2500) // 25% off

	c, err := svc.SetQuantity(ctx, userID, bookID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), c.TotalPriceCents)
}

func TestVanishedBookContributesNothing(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	bookID := addBook(t, repo, 2000, 0)

	_, err := svc.AddBook(ctx, userID, bookID)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, bookID))

	c, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, c.TotalQuantity)
	assert.Zero(t, c.TotalPriceCents)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	bookID := addBook(t, repo, 1000, 0)
	alice := uuid.New()
	bob := uuid.New()

	_, err := svc.AddBook(ctx, alice, bookID)
	require.NoError(t, err)

	c, err := svc.Get(ctx, bob)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}
