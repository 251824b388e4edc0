package reconciler

import (
	"context"
	"time"

	"github.com/cuemby/fabriq/internal/consumerloop"
	"github.com/cuemby/fabriq/internal/eventstream"
)

// Run drains consumerID's queue forever, processing each event through
// r.Process. The queue is polled at pollInterval when empty. See
// consumerloop for the at-least-once redelivery semantics this shares
// with the GitOps processor's loop.
func Run(ctx context.Context, r *Reconciler, stream eventstream.Stream, consumerID string, pollInterval time.Duration) error {
	return consumerloop.Run(ctx, r, stream, consumerID, pollInterval)
}
