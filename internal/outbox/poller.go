// internal/outbox/poller.go
package outbox

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"bookhaven/pkg/logger"
)

const (
	defaultTick  = time.Second
	defaultBatch = 100
)

// Poller drains pending outbox events into the sink. The sink call runs
// behind a circuit breaker so a struggling downstream does not get hammered
// on every tick.
type Poller struct {
	repo    Repository
	sink    Sink
	breaker *gobreaker.CircuitBreaker
	tick    time.Duration
	batch   int
	log     *logger.Logger
}

func NewPoller(repo Repository, sink Sink, log *logger.Logger) *Poller {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "outbox-sink",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Poller{
		repo:    repo,
		sink:    sink,
		breaker: breaker,
		tick:    defaultTick,
		batch:   defaultBatch,
		log:     log.With("component", "outbox"),
	}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.drain(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Poller) drain(ctx context.Context) {
	events, err := p.repo.GetUnprocessed(ctx, p.batch)
	if err != nil {
		p.log.Error("failed to fetch outbox events", "error", err)
		return
	}

	for _, event := range events {
		_, err := p.breaker.Execute(func() (interface{}, error) {
			return nil, p.sink.Deliver(ctx, event)
		})
		if err != nil {
			p.log.Warn("failed to deliver outbox event", "event_id", event.ID, "type", event.EventType, "error", err)
			continue
		}

		if err := p.repo.MarkProcessed(ctx, event.ID); err != nil {
			p.log.Error("failed to mark outbox event processed", "event_id", event.ID, "error", err)
		}
	}
}
