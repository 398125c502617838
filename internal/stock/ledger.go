// internal/stock/ledger.go
package stock

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrUnknownBook       = errors.New("book not tracked by stock ledger")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports which book could not be reserved.
type InsufficientStockError struct {
	BookID    uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %s: requested %d, available %d", e.BookID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Reservation is a provisional hold against one book's available stock. The
// ledger decrements eagerly on TryReserve, so Commit finalizes without
// touching the counter and Release restores it. A reservation settles exactly
// once: committing or releasing it again is a no-op.
type Reservation struct {
	BookID   uuid.UUID
	Quantity int
	state    *reservationState
}

type reservationState struct {
	mu      sync.Mutex
	settled bool
}

// settle marks the reservation settled and reports whether this call won.
func (r Reservation) settle() bool {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	if r.state.settled {
		return false
	}
	r.state.settled = true
	return true
}

// Ledger is the authoritative per-book available-quantity counter.
type Ledger interface {
	// TryReserve atomically checks available >= qty and decrements. There is
	// no read-check-write window between concurrent reservations of the same
	// book.
	TryReserve(bookID uuid.UUID, qty int) (Reservation, error)

	// Commit finalizes a reservation. Idempotent.
	Commit(r Reservation)

	// Release restores a reservation's quantity. Idempotent, and a no-op
	// after Commit.
	Release(r Reservation)

	// Available returns the current available quantity for a book.
	Available(bookID uuid.UUID) (int, error)

	// SetStock registers a book with the given available quantity,
	// overwriting any prior value.
	SetStock(bookID uuid.UUID, qty int)

	// Restock adds qty back to a book's available quantity. Used by order
	// cancellation and administrative restocking.
	Restock(bookID uuid.UUID, qty int) error

	// Forget drops a book from the ledger.
	Forget(bookID uuid.UUID)
}

// MemoryLedger keeps counters in process memory, one lock per book so
// unrelated reservations never contend.
type MemoryLedger struct {
	mu    sync.RWMutex // guards the books map, not the counters
	books map[uuid.UUID]*bookStock
}

type bookStock struct {
	mu        sync.Mutex
	available int
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{books: make(map[uuid.UUID]*bookStock)}
}

func (l *MemoryLedger) lookup(bookID uuid.UUID) (*bookStock, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	bs, ok := l.books[bookID]
	if !ok {
		return nil, ErrUnknownBook
	}
	return bs, nil
}

func (l *MemoryLedger) TryReserve(bookID uuid.UUID, qty int) (Reservation, error) {
	if qty <= 0 {
		return Reservation{}, fmt.Errorf("invalid reservation quantity %d", qty)
	}
	bs, err := l.lookup(bookID)
	if err != nil {
		return Reservation{}, err
	}

	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.available < qty {
		return Reservation{}, &InsufficientStockError{BookID: bookID, Requested: qty, Available: bs.available}
	}
	bs.available -= qty

	return Reservation{BookID: bookID, Quantity: qty, state: &reservationState{}}, nil
}

func (l *MemoryLedger) Commit(r Reservation) {
	if r.state == nil {
		return
	}
	// Eager ledger: the decrement already happened in TryReserve.
	r.settle()
}

func (l *MemoryLedger) Release(r Reservation) {
	if r.state == nil || !r.settle() {
		return
	}
	bs, err := l.lookup(r.BookID)
	if err != nil {
		return
	}
	bs.mu.Lock()
	bs.available += r.Quantity
	bs.mu.Unlock()
}

func (l *MemoryLedger) Available(bookID uuid.UUID) (int, error) {
	bs, err := l.lookup(bookID)
	if err != nil {
		return 0, err
	}
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.available, nil
}

func (l *MemoryLedger) SetStock(bookID uuid.UUID, qty int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.books[bookID] = &bookStock{available: qty}
}

func (l *MemoryLedger) Restock(bookID uuid.UUID, qty int) error {
	if qty < 0 {
		return fmt.Errorf("invalid restock quantity %d", qty)
	}
	bs, err := l.lookup(bookID)
	if err != nil {
		return err
	}
	bs.mu.Lock()
	bs.available += qty
	bs.mu.Unlock()
	return nil
}

func (l *MemoryLedger) Forget(bookID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.books, bookID)
}
