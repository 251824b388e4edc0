package rpcapi

import (
	"context"

	"github.com/cuemby/fabriq/api/fabriqpb"
)

// HealthServer implements fabriqpb.HealthServer, a trivial liveness
// check for clients that talk gRPC rather than the HTTP /health route.
type HealthServer struct{}

// NewHealthServer constructs a HealthServer.
func NewHealthServer() *HealthServer {
	return &HealthServer{}
}

func (s *HealthServer) Health(ctx context.Context) (fabriqpb.HealthResponse, error) {
	return fabriqpb.HealthResponse{Ok: true}, nil
}
