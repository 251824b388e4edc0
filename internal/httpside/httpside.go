// Package httpside exposes fabriqd's non-gRPC surface: a liveness probe,
// the Prometheus scrape endpoint, and a webhook placeholder that accepts
// POSTs and only logs them.
package httpside

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cuemby/fabriq/internal/eventstream"
	"github.com/cuemby/fabriq/internal/log"
	"github.com/cuemby/fabriq/internal/metrics"
	"github.com/cuemby/fabriq/internal/storage"
)

// Server hosts fabriqd's HTTP side-channel.
type Server struct {
	store  *storage.Store
	stream eventstream.Stream
	logger zerolog.Logger
}

// NewServer wires a Server over store and stream.
func NewServer(store *storage.Store, stream eventstream.Stream) *Server {
	return &Server{store: store, stream: stream, logger: log.WithComponent("httpside")}
}

// Handler builds the mux Serve dispatches on.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/event_handler", s.handleEventNotify)
	return mux
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleEventNotify accepts a bare POST from an external pusher (e.g. a
// git-push webhook) and only logs it; it does not touch the event
// stream, whose consumers keep polling on their own interval.
func (s *Server) handleEventNotify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.logger.Info().Str("remote", r.RemoteAddr).Msg("event notification received")
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, "accepted")
}
