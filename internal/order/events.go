// internal/order/events.go
package order

import (
	"time"

	"github.com/google/uuid"
)

// CreatedEvent is the OrderCreated payload written to the outbox when a
// checkout commits. External consumers use it for email and claim-code
// delivery.
type CreatedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	ClaimCode  string    `json:"claim_code"`
	TotalCents int64     `json:"total_cents"`
	OrderDate  time.Time `json:"order_date"`
}
