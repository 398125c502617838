// internal/stock/ledger_test.go
package stock

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTryReserve_DecrementsEagerly(t *testing.T) {
	ledger := NewMemoryLedger()
	bookID := uuid.New()
	ledger.SetStock(bookID, 10)

	res, err := ledger.TryReserve(bookID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Quantity)

	available, err := ledger.Available(bookID)
	require.NoError(t, err)
	assert.Equal(t, 6, available)
}

func TestTryReserve_InsufficientStock(t *testing.T) {
	ledger := NewMemoryLedger()
	bookID := uuid.New()
	ledger.SetStock(bookID, 3)

	_, err := ledger.TryReserve(bookID, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, bookID, insufficient.BookID)
	assert.Equal(t, 5, insufficient.Requested)
	assert.Equal(t, 3, insufficient.Available)

	available, err := ledger.Available(bookID)
	require.NoError(t, err)
	assert.Equal(t, 3, available, "failed reservation must not consume stock")
}

func TestTryReserve_UnknownBook(t *testing.T) {
	ledger := NewMemoryLedger()
	_, err := ledger.TryReserve(uuid.New(), 1)
	assert.ErrorIs(t, err, ErrUnknownBook)
}

func TestRelease_RestoresStock(t *testing.T) {
	ledger := NewMemoryLedger()
	bookID := uuid.New()
	ledger.SetStock(bookID, 10)

	res, err := ledger.TryReserve(bookID, 7)
	require.NoError(t, err)

	ledger.Release(res)
	available, _ := ledger.Available(bookID)
	assert.Equal(t, 10, available)

	// Double release must not inflate stock.
	ledger.Release(res)
	available, _ = ledger.Available(bookID)
	assert.Equal(t, 10, available)
}

func TestCommit_IsIdempotentAndBlocksLaterRelease(t *testing.T) {
	ledger := NewMemoryLedger()
	bookID := uuid.New()
	ledger.SetStock(bookID, 10)

	res, err := ledger.TryReserve(bookID, 6)
	require.NoError(t, err)

	ledger.Commit(res)
	ledger.Commit(res)
	available, _ := ledger.Available(bookID)
	assert.Equal(t, 4, available)

	// Releasing a committed reservation is a no-op.
	ledger.Release(res)
	available, _ = ledger.Available(bookID)
	assert.Equal(t, 4, available)
}

func TestRestock(t *testing.T) {
	ledger := NewMemoryLedger()
	bookID := uuid.New()
	ledger.SetStock(bookID, 2)

	require.NoError(t, ledger.Restock(bookID, 5))
	available, _ := ledger.Available(bookID)
	assert.Equal(t, 7, available)

	assert.Error(t, ledger.Restock(uuid.New(), 1))
}

// Two concurrent reservations of 6 against stock 10: exactly one succeeds
// and stock ends at 4.
func TestTryReserve_ConcurrentContention(t *testing.T) {
	ledger := NewMemoryLedger()
	bookID := uuid.New()
	ledger.SetStock(bookID, 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res, err := ledger.TryReserve(bookID, 6); err == nil {
				ledger.Commit(res)
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	available, _ := ledger.Available(bookID)
	assert.Equal(t, 4, available)
}

// For any initial stock and any set of concurrent demands, the committed
// quantity never exceeds the initial stock and the counter never goes
// negative.
func TestTryReserve_NeverOversells(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.IntRange(0, 50).Draw(t, "initial")
		demands := rapid.SliceOfN(rapid.IntRange(1, 20), 1, 16).Draw(t, "demands")

		ledger := NewMemoryLedger()
		bookID := uuid.New()
		ledger.SetStock(bookID, initial)

		var wg sync.WaitGroup
		var mu sync.Mutex
		committed := 0

		for _, qty := range demands {
			wg.Add(1)
			go func(qty int) {
				defer wg.Done()
				if res, err := ledger.TryReserve(bookID, qty); err == nil {
					ledger.Commit(res)
					mu.Lock()
					committed += qty
					mu.Unlock()
				}
			}(qty)
		}
		wg.Wait()

		if committed > initial {
			t.Fatalf("committed %d exceeds initial stock %d", committed, initial)
		}
		available, err := ledger.Available(bookID)
		if err != nil {
			t.Fatal(err)
		}
		if available < 0 {
			t.Fatalf("available went negative: %d", available)
		}
		if available != initial-committed {
			t.Fatalf("available %d != initial %d - committed %d", available, initial, committed)
		}
	})
}
