package gitops

import (
	"context"
	"time"

	"github.com/cuemby/fabriq/internal/consumerloop"
	"github.com/cuemby/fabriq/internal/eventstream"
)

// Run drains consumerID's queue forever, handing each event to
// p.Process. See consumerloop for the shared at-least-once redelivery
// semantics.
func Run(ctx context.Context, p *Processor, stream eventstream.Stream, consumerID string, pollInterval time.Duration) error {
	return consumerloop.Run(ctx, p, stream, consumerID, pollInterval)
}
