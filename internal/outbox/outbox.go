// internal/outbox/outbox.go
package outbox

import (
	"context"
	"encoding/json"
	"time"
)

// EventTypeOrderCreated is emitted after a checkout commits. External
// consumers (email, claim-code delivery) pick it up from here.
const EventTypeOrderCreated = "OrderCreated"

// Event is one pending outbox record. Rows are written in the same
// transaction as the state change they describe and delivered asynchronously
// by the Poller.
type Event struct {
	ID          int64           `json:"id" db:"id"`
	EventType   string          `json:"event_type" db:"event_type"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
}

// Repository reads and settles pending events.
type Repository interface {
	GetUnprocessed(ctx context.Context, limit int) ([]*Event, error)
	MarkProcessed(ctx context.Context, id int64) error
}

// Sink receives delivered events. Delivery is at-least-once: a sink may see
// an event again if marking it processed fails.
type Sink interface {
	Deliver(ctx context.Context, event *Event) error
}
