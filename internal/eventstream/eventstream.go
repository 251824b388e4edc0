// Package eventstream defines the durable per-subscriber event queue
// port: every mutation is fanned out to each configured subscriber's own
// ordered queue, and a subscriber only advances past an event once it
// deletes it, giving at-least-once delivery across daemon restarts.
package eventstream

import (
	"context"

	"github.com/cuemby/fabriq/internal/model"
)

// Stream is the durable event queue port. A Stream instance is scoped to
// nothing in particular; callers pass the consumer id explicitly so a
// single Stream can serve every subscriber.
type Stream interface {
	// Send enqueues ev for every consumer in consumerIDs.
	Send(ctx context.Context, ev model.Event, consumerIDs []string) error

	// Receive returns up to limit events queued for consumerID, ordered
	// by enqueue time, oldest first.
	Receive(ctx context.Context, consumerID string, limit int) ([]model.Event, error)

	// Delete removes a delivered event from consumerID's queue. Called
	// after the event is fully processed, so a crash mid-processing
	// redelivers it.
	Delete(ctx context.Context, consumerID string, eventID string) error

	// Len reports how many events remain queued for consumerID.
	Len(ctx context.Context, consumerID string) (int, error)
}
