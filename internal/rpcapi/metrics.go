package rpcapi

import (
	"context"

	"google.golang.org/grpc"

	"github.com/cuemby/fabriq/internal/metrics"
)

// MetricsInterceptor records request count, labeled by method name and
// outcome, and request latency, labeled by method name.
func MetricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	timer := metrics.NewTimer()
	resp, err := handler(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.APIRequestsTotal.WithLabelValues(info.FullMethod, status).Inc()
	timer.ObserveDuration(metrics.APIRequestDuration.WithLabelValues(info.FullMethod))

	return resp, err
}
