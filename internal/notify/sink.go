// internal/notify/sink.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"bookhaven/internal/outbox"
)

// EventTypeOrderCreated mirrors the outbox event type on the push channel.
const EventTypeOrderCreated = "ReceiveOrderCreated"

// HubSink pushes order events to the owning user's open streams. It
// implements outbox.Sink and ignores event types it does not know.
type HubSink struct {
	hub *Hub
}

func NewHubSink(hub *Hub) *HubSink {
	return &HubSink{hub: hub}
}

func (s *HubSink) Deliver(_ context.Context, event *outbox.Event) error {
	if event.EventType != outbox.EventTypeOrderCreated {
		return nil
	}
	var payload struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode order event payload: %w", err)
	}
	var data interface{}
	if err := json.Unmarshal(event.Payload, &data); err != nil {
		return fmt.Errorf("failed to decode order event payload: %w", err)
	}
	s.hub.Broadcast(Event{
		Group: UserGroup(payload.UserID),
		Type:  EventTypeOrderCreated,
		Data:  data,
	})
	return nil
}
