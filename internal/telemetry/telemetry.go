// Package telemetry builds the OpenTelemetry tracer provider from config.
package telemetry

import (
	"context"
	"log/slog"

	"github.com/opensource-finance/retention/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ShutdownFunc flushes and stops a tracer provider.
type ShutdownFunc func(context.Context) error

// NewTracerProvider returns a no-op provider when tracing is disabled.
// Otherwise it returns an SDK provider sampling root spans at the configured
// ratio and writing every finished span to the default logger at debug level.
func NewTracerProvider(cfg domain.TracingConfig, extra ...sdktrace.SpanProcessor) (trace.TracerProvider, ShutdownFunc) {
	if !cfg.Enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithSpanProcessor(logProcessor{}),
	}
	for _, p := range extra {
		opts = append(opts, sdktrace.WithSpanProcessor(p))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	return tp, tp.Shutdown
}

// logProcessor logs finished spans. It keeps no state.
type logProcessor struct{}

func (logProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (logProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	sc := s.SpanContext()
	slog.Debug("span finished",
		"span", s.Name(),
		"trace_id", sc.TraceID().String(),
		"span_id", sc.SpanID().String(),
		"status", s.Status().Code.String(),
		"duration_ms", s.EndTime().Sub(s.StartTime()).Milliseconds(),
	)
}

func (logProcessor) Shutdown(context.Context) error { return nil }
func (logProcessor) ForceFlush(context.Context) error { return nil }
