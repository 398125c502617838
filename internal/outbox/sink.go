// internal/outbox/sink.go
package outbox

import "context"

// FanoutSink delivers each event to every sink in order. A failure stops
// the fan-out so the event is retried; sinks must tolerate re-delivery.
type FanoutSink []Sink

func (f FanoutSink) Deliver(ctx context.Context, event *Event) error {
	for _, sink := range f {
		if err := sink.Deliver(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
