// internal/order/domain.go
package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrClaimCodeTaken    = errors.New("claim code already in use")
	ErrInvalidTransition = errors.New("illegal order status transition")
)

// Status is the order lifecycle state machine: Pending → Ongoing → Completed
// on the happy path, with cancellation allowed out of Pending and Ongoing.
// Completed and Cancelled are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusOngoing   Status = "ONGOING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the transition s → to is permitted.
func (s Status) CanTransitionTo(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusOngoing || to == StatusCancelled
	case StatusOngoing:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Line is an immutable snapshot of one cart line at purchase time. Unit
// price and discount are frozen here and never recomputed from the catalog.
type Line struct {
	BookID         uuid.UUID `json:"book_id" db:"book_id"`
	Title          string    `json:"title" db:"title"`
	Quantity       int       `json:"quantity" db:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents" db:"unit_price_cents"`
	DiscountBps    int       `json:"discount_bps" db:"discount_bps"`
	DiscountCents  int64     `json:"discount_cents" db:"discount_cents"`
	SubtotalCents  int64     `json:"subtotal_cents" db:"subtotal_cents"`
}

// Order is the immutable record of a completed checkout. Only Status changes
// after creation, and only through explicit transitions.
type Order struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Lines          []Line    `json:"lines" db:"-"`
	SubtotalCents  int64     `json:"subtotal_cents" db:"subtotal_cents"`
	DiscountCents  int64     `json:"discount_cents" db:"discount_cents"`
	TotalCents     int64     `json:"total_cents" db:"total_cents"`
	ClaimCode      string    `json:"claim_code" db:"claim_code"`
	Status         Status    `json:"status" db:"status"`
	IdempotencyKey string    `json:"-" db:"idempotency_key"`
	OrderDate      time.Time `json:"order_date" db:"order_date"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
