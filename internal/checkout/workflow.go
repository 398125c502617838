// internal/checkout/workflow.go
package checkout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"bookhaven/internal/cart"
	"bookhaven/internal/catalog"
	"bookhaven/internal/order"
	"bookhaven/internal/pricing"
	"bookhaven/internal/stock"
	"bookhaven/pkg/logger"
)

const claimCodeAttempts = 5

// BookNotFoundError reports a cart line whose book vanished from the catalog
// between cart-add and checkout. The client must refresh the cart.
type BookNotFoundError struct {
	BookID uuid.UUID
}

func (e *BookNotFoundError) Error() string {
	return fmt.Sprintf("book %s no longer exists in the catalog", e.BookID)
}

func (e *BookNotFoundError) Unwrap() error { return catalog.ErrBookNotFound }

// Workflow converts a user's cart into an immutable order. It is the
// transactional boundary of the system: reservations are acquired in
// ascending book order, every acquired reservation is released in reverse on
// any downstream failure, and the order row, snapshot lines, durable stock
// decrement and OrderCreated outbox record commit in one transaction.
type Workflow struct {
	carts     cart.Store
	cartLocks *cart.Locks
	books     catalog.Repository
	ledger    stock.Ledger
	orders    order.Repository
	tracer    trace.Tracer
	log       *logger.Logger
	now       func() time.Time

	limMu    sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewWorkflow creates the checkout workflow. cartLocks must be the instance
// shared with the cart service so checkout holds the same per-cart lock as
// cart mutation.
func NewWorkflow(carts cart.Store, cartLocks *cart.Locks, books catalog.Repository, ledger stock.Ledger, orders order.Repository, log *logger.Logger) *Workflow {
	return &Workflow{
		carts:     carts,
		cartLocks: cartLocks,
		books:     books,
		ledger:    ledger,
		orders:    orders,
		tracer:    otel.Tracer("bookhaven/checkout"),
		log:       log.With("component", "checkout"),
		now:       time.Now,
		limiters:  make(map[uuid.UUID]*rate.Limiter),
		limit:     rate.Every(time.Minute / 10),
		burst:     5,
	}
}

func (w *Workflow) limiterFor(userID uuid.UUID) *rate.Limiter {
	w.limMu.Lock()
	defer w.limMu.Unlock()
	lim, ok := w.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(w.limit, w.burst)
		w.limiters[userID] = lim
	}
	return lim
}

// Checkout runs the full saga for the user's current cart. With a non-empty
// idempotency key, a retried request returns the order the first attempt
// created instead of charging stock again.
func (w *Workflow) Checkout(ctx context.Context, userID uuid.UUID, idempotencyKey string) (*order.Order, error) {
	ctx, span := w.tracer.Start(ctx, "checkout.run",
		trace.WithAttributes(
			attribute.String("user.id", userID.String()),
			attribute.Bool("idempotency.key_present", idempotencyKey != ""),
		),
	)
	defer span.End()

	if idempotencyKey != "" {
		existing, err := w.orders.GetByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			span.SetAttributes(attribute.Bool("idempotency.replayed", true))
			return existing, nil
		}
		if !errors.Is(err, order.ErrOrderNotFound) {
			return nil, fmt.Errorf("idempotency lookup: %w", err)
		}
	}

	if !w.limiterFor(userID).Allow() {
		return nil, ErrRateLimited
	}

	// The cart lock covers steps 1-7: the snapshot cannot change mid-flight.
	release := w.cartLocks.Acquire(userID)
	defer release()

	// A concurrent retry with the same key may have committed while we
	// waited for the lock; its commit cleared the cart, so the lookup has
	// to happen again under the lock or the retry would see an empty cart.
	if idempotencyKey != "" {
		existing, err := w.orders.GetByIdempotencyKey(ctx, idempotencyKey)
		if err == nil {
			span.SetAttributes(attribute.Bool("idempotency.replayed", true))
			return existing, nil
		}
		if !errors.Is(err, order.ErrOrderNotFound) {
			return nil, fmt.Errorf("idempotency lookup: %w", err)
		}
	}

	// Step 1: snapshot the cart and validate every book still exists.
	crt, err := w.carts.Get(ctx, userID)
	if errors.Is(err, cart.ErrCartNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if crt.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := append([]cart.Line(nil), crt.Lines...)
	sortByBookID(lines)

	ids := make([]uuid.UUID, len(lines))
	for i, line := range lines {
		ids[i] = line.BookID
	}
	books, err := w.books.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	for _, line := range lines {
		if _, ok := books[line.BookID]; !ok {
			return nil, &BookNotFoundError{BookID: line.BookID}
		}
	}

	// Step 2: reserve stock in ascending book order so concurrent
	// multi-book checkouts can never deadlock each other. Any failure
	// releases everything acquired so far, in reverse.
	reservations := make([]stock.Reservation, 0, len(lines))
	releaseAll := func() {
		for i := len(reservations) - 1; i >= 0; i-- {
			w.ledger.Release(reservations[i])
		}
	}
	for _, line := range lines {
		res, err := w.ledger.TryReserve(line.BookID, line.Quantity)
		if err != nil {
			releaseAll()
			if errors.Is(err, stock.ErrUnknownBook) {
				return nil, &BookNotFoundError{BookID: line.BookID}
			}
			span.SetAttributes(attribute.Bool("stock.conflict", true))
			return nil, err
		}
		reservations = append(reservations, res)
	}

	// Step 3: price every line from the current catalog snapshot.
	now := w.now().UTC()
	orderLines := make([]order.Line, len(lines))
	priced := make([]pricing.Line, len(lines))
	for i, line := range lines {
		book := books[line.BookID]
		p := pricing.ComputeLine(book.PriceCents, book.DiscountBps, book.DiscountWindow(), now, line.Quantity)
		priced[i] = p
		orderLines[i] = order.Line{
			BookID:         book.ID,
			Title:          book.Title,
			Quantity:       line.Quantity,
			UnitPriceCents: p.UnitPriceCents,
			DiscountBps:    p.DiscountBps,
			DiscountCents:  p.DiscountCents,
			SubtotalCents:  p.SubtotalCents,
		}
	}
	totals := pricing.ComputeOrderTotals(priced)

	ord := &order.Order{
		ID:             uuid.New(),
		UserID:         userID,
		Lines:          orderLines,
		SubtotalCents:  totals.SubtotalCents,
		DiscountCents:  totals.DiscountCents,
		TotalCents:     totals.TotalCents,
		Status:         order.StatusPending,
		IdempotencyKey: idempotencyKey,
		OrderDate:      now,
	}

	// Steps 4-5: claim code plus durable commit, retrying the code on
	// collision. Past this point the caller may no longer abort.
	if err := w.persist(ctx, ord); err != nil {
		releaseAll()
		if errors.Is(err, order.ErrDuplicateIdempotencyKey) {
			// A concurrent retry with the same key won the race; hand back
			// the order it created.
			existing, lookupErr := w.orders.GetByIdempotencyKey(ctx, idempotencyKey)
			if lookupErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}

	// Step 6: commit the reservations (the eager ledger treats this as
	// finalization only).
	for _, res := range reservations {
		w.ledger.Commit(res)
	}

	// Step 7: clear the cart. The order is already durable; a failure here
	// only leaves a stale preview behind, so log and move on.
	crt.Clear()
	crt.UpdatedAt = now
	if err := w.carts.Save(ctx, crt); err != nil {
		w.log.Warn("failed to clear cart after checkout", "user_id", userID, "order_id", ord.ID, "error", err)
	}

	// Step 8, the OrderCreated event, rode along in the commit transaction
	// as an outbox record.
	w.log.Info("checkout committed", "user_id", userID, "order_id", ord.ID, "total_cents", ord.TotalCents, "lines", len(ord.Lines))
	span.SetAttributes(attribute.String("order.id", ord.ID.String()))
	return ord, nil
}

func (w *Workflow) persist(ctx context.Context, ord *order.Order) error {
	ctx, span := w.tracer.Start(ctx, "checkout.persist",
		trace.WithAttributes(attribute.String("order.id", ord.ID.String())),
	)
	defer span.End()

	for attempt := 0; attempt < claimCodeAttempts; attempt++ {
		code, err := order.GenerateClaimCode()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		ord.ClaimCode = code

		err = w.orders.Create(ctx, ord)
		if err == nil {
			return nil
		}
		if errors.Is(err, order.ErrClaimCodeTaken) {
			span.SetAttributes(attribute.Int("claim_code.collisions", attempt+1))
			continue
		}
		if errors.Is(err, order.ErrDuplicateIdempotencyKey) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return ErrClaimCodeExhausted
}

func sortByBookID(lines []cart.Line) {
	sort.Slice(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].BookID[:], lines[j].BookID[:]) < 0
	})
}
