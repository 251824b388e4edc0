// Package memory implements eventstream.Stream over in-memory queues, for
// tests and embedded use.
package memory

import (
	"context"
	"sync"

	"github.com/cuemby/fabriq/internal/model"
)

// Stream is a mutex-guarded map of per-consumer ordered queues.
type Stream struct {
	mu     sync.Mutex
	queues map[string][]model.Event
}

// New constructs an empty Stream.
func New() *Stream {
	return &Stream{queues: make(map[string][]model.Event)}
}

func (s *Stream) Send(_ context.Context, ev model.Event, consumerIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, consumerID := range consumerIDs {
		copied := ev
		copied.ConsumerID = consumerID
		copied.ID = model.MakeEventID(ev.OperationID, consumerID)
		s.queues[consumerID] = append(s.queues[consumerID], copied)
	}
	return nil
}

func (s *Stream) Receive(_ context.Context, consumerID string, limit int) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[consumerID]
	if limit <= 0 || limit > len(q) {
		limit = len(q)
	}
	out := make([]model.Event, limit)
	copy(out, q[:limit])
	return out, nil
}

func (s *Stream) Delete(_ context.Context, consumerID string, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.queues[consumerID]
	for i, ev := range q {
		if ev.ID == eventID {
			s.queues[consumerID] = append(q[:i], q[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Stream) Len(_ context.Context, consumerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queues[consumerID]), nil
}
