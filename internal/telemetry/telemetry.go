// Package telemetry wires an OTEL tracer provider for fabriqd, exporting
// spans over OTLP/gRPC when OTEL_ENDPOINT is configured and falling back
// to a no-op provider otherwise so the daemon runs unmodified in
// environments with no collector.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/cuemby/fabriq/internal/config"
)

// Shutdown flushes and stops the tracer provider installed by Init. It is
// a no-op when Init ran without an OTEL endpoint configured.
type Shutdown func(ctx context.Context) error

// Init installs a global tracer provider named after cfg.ServiceName and
// cfg.ServiceVersion. With no OTEL_ENDPOINT set it installs otel's no-op
// provider and returns a no-op Shutdown.
func Init(ctx context.Context, cfg config.Config) (Shutdown, error) {
	if cfg.OTELEndpoint == "" {
		otel.SetTracerProvider(trace.NewNoopTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(cfg.OTELEndpoint), otlptracegrpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("telemetry: build otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
