// internal/outbox/poller_test.go
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhaven/pkg/logger"
)

type stubRepo struct {
	events []*Event
}

func (r *stubRepo) add(eventType string) *Event {
	e := &Event{
		ID:        int64(len(r.events) + 1),
		EventType: eventType,
		Payload:   json.RawMessage(`{}`),
		CreatedAt: time.Now().UTC(),
	}
	r.events = append(r.events, e)
	return e
}

func (r *stubRepo) GetUnprocessed(_ context.Context, limit int) ([]*Event, error) {
	var out []*Event
	for _, e := range r.events {
		if e.ProcessedAt == nil {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *stubRepo) MarkProcessed(_ context.Context, id int64) error {
	for _, e := range r.events {
		if e.ID == id {
			now := time.Now().UTC()
			e.ProcessedAt = &now
		}
	}
	return nil
}

func (r *stubRepo) unprocessed() int {
	n := 0
	for _, e := range r.events {
		if e.ProcessedAt == nil {
			n++
		}
	}
	return n
}

type recordingSink struct {
	delivered []int64
	err       error
}

func (s *recordingSink) Deliver(_ context.Context, event *Event) error {
	if s.err != nil {
		return s.err
	}
	s.delivered = append(s.delivered, event.ID)
	return nil
}

func TestDrainDeliversAndMarksProcessed(t *testing.T) {
	repo := &stubRepo{}
	repo.add(EventTypeOrderCreated)
	repo.add(EventTypeOrderCreated)
	sink := &recordingSink{}

	p := NewPoller(repo, sink, logger.NewNop())
	p.drain(context.Background())

	assert.Equal(t, []int64{1, 2}, sink.delivered)
	assert.Zero(t, repo.unprocessed())

	// Nothing left, nothing re-delivered.
	p.drain(context.Background())
	assert.Len(t, sink.delivered, 2)
}

func TestDrainKeepsFailedEvents(t *testing.T) {
	repo := &stubRepo{}
	repo.add(EventTypeOrderCreated)
	sink := &recordingSink{err: errors.New("downstream down")}

	p := NewPoller(repo, sink, logger.NewNop())
	p.drain(context.Background())
	assert.Equal(t, 1, repo.unprocessed())

	// Recovery: the same event goes out on a later drain.
	sink.err = nil
	p.drain(context.Background())
	assert.Zero(t, repo.unprocessed())
	assert.Equal(t, []int64{1}, sink.delivered)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	repo := &stubRepo{}
	for i := 0; i < 10; i++ {
		repo.add(EventTypeOrderCreated)
	}

	calls := 0
	sink := sinkFunc(func(context.Context, *Event) error {
		calls++
		return errors.New("downstream down")
	})

	p := NewPoller(repo, sink, logger.NewNop())
	p.drain(context.Background())

	// After five consecutive failures the breaker opens and the remaining
	// events are skipped without touching the sink.
	assert.Equal(t, 5, calls)
	assert.Equal(t, 10, repo.unprocessed())
}

type sinkFunc func(ctx context.Context, event *Event) error

func (f sinkFunc) Deliver(ctx context.Context, event *Event) error { return f(ctx, event) }

func TestFanoutSink(t *testing.T) {
	first := &recordingSink{}
	second := &recordingSink{}
	repo := &stubRepo{}
	event := repo.add(EventTypeOrderCreated)

	require.NoError(t, FanoutSink{first, second}.Deliver(context.Background(), event))
	assert.Equal(t, []int64{1}, first.delivered)
	assert.Equal(t, []int64{1}, second.delivered)

	// A failing sink stops the fan-out so the event is retried whole.
	failing := &recordingSink{err: errors.New("nope")}
	tail := &recordingSink{}
	err := FanoutSink{failing, tail}.Deliver(context.Background(), event)
	assert.Error(t, err)
	assert.Empty(t, tail.delivered)
}
