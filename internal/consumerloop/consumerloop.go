// Package consumerloop implements the polling consumer loop shared by
// every subscriber of the event stream (the reconciler, the GitOps
// processor): drain a consumer's queue, hand each event to a Processor,
// delete it on success, drop it on a fatal event, leave it queued for
// redelivery on any other error.
package consumerloop

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/fabriq/internal/errs"
	"github.com/cuemby/fabriq/internal/eventstream"
	"github.com/cuemby/fabriq/internal/log"
	"github.com/cuemby/fabriq/internal/metrics"
	"github.com/cuemby/fabriq/internal/model"
)

// batchSize bounds how many queued events a single Receive call drains
// before the loop checks back in with the queue depth gauge.
const batchSize = 32

// Processor handles one event. A *errs.Error of kind FatalEvent causes
// the loop to drop the event instead of redelivering it.
type Processor interface {
	Process(ctx context.Context, ev model.Event) error
}

// Run drains consumerID's queue on stream forever, processing each event
// through proc. It returns only when ctx is cancelled or a non-recoverable
// error leaves the loop unable to make progress.
func Run(ctx context.Context, proc Processor, stream eventstream.Stream, consumerID string, pollInterval time.Duration) error {
	logger := log.WithConsumer(consumerID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		events, err := stream.Receive(ctx, consumerID, batchSize)
		if err != nil {
			logger.Error().Err(err).Msg("receive from event stream failed")
			if !sleep(ctx, pollInterval) {
				return ctx.Err()
			}
			continue
		}

		if depth, err := stream.Len(ctx, consumerID); err == nil {
			metrics.EventQueueDepth.WithLabelValues(consumerID).Set(float64(depth))
		}

		if len(events) == 0 {
			if !sleep(ctx, pollInterval) {
				return ctx.Err()
			}
			continue
		}

		for _, ev := range events {
			if err := processOne(ctx, proc, stream, consumerID, ev, logger); err != nil {
				return err
			}
		}
	}
}

func processOne(ctx context.Context, proc Processor, stream eventstream.Stream, consumerID string, ev model.Event, logger zerolog.Logger) error {
	err := proc.Process(ctx, ev)
	switch {
	case err == nil:
		return stream.Delete(ctx, consumerID, ev.ID)
	case errs.Is(err, errs.KindFatalEvent):
		logger.Error().Err(err).Str("event_id", ev.ID).Str("model_type", string(ev.ModelType)).
			Msg("dropping unprocessable event")
		return stream.Delete(ctx, consumerID, ev.ID)
	default:
		logger.Warn().Err(err).Str("event_id", ev.ID).Str("model_type", string(ev.ModelType)).
			Msg("event processing failed, will retry")
		return nil
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
