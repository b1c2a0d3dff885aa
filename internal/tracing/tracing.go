// Package tracing provides the Model Client's per-call observability hook.
// It wraps an OpenTelemetry tracer behind a small interface so the pipeline
// can run standalone, with spans becoming no-ops, when no collector endpoint
// is configured.
package tracing

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Span is the minimal observation surface a pipeline call needs: an end,
// a string attribute, and error recording. The span's name ("LLM Call" /
// "Structured LLM Call" in the Model Client) is given to Tracer.Start.
type Span interface {
	End()
	SetAttribute(key string, value string)
	RecordError(err error)
}

// Tracer starts named spans; the Model Client opens one span per call.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
	Shutdown(ctx context.Context) error
}

type otelSpan struct{ span trace.Span }

func (s otelSpan) End()                              { s.span.End() }
func (s otelSpan) SetAttribute(key, value string)    { s.span.SetAttributes(attribute.String(key, value)) }
func (s otelSpan) RecordError(err error)             { s.span.RecordError(err) }

type otelTracer struct {
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

func (t *otelTracer) Start(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, otelSpan{span: span}
}

func (t *otelTracer) Shutdown(ctx context.Context) error { return t.shutdown(ctx) }

// noopSpan/noopTracer satisfy spec.md §9's "provide a null implementation
// when the observability backend is not configured, so the core runs
// standalone."
type noopSpan struct{}

func (noopSpan) End()                           {}
func (noopSpan) SetAttribute(string, string)    {}
func (noopSpan) RecordError(error)              {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, Span) { return ctx, noopSpan{} }
func (noopTracer) Shutdown(context.Context) error                              { return nil }

// NoOp is the tracer used when no collector endpoint is configured.
var NoOp Tracer = noopTracer{}

// New builds an OTLP-HTTP backed tracer for serviceName. If endpoint is
// empty, a no-op tracer is returned and the pipeline proceeds unobserved.
func New(ctx context.Context, serviceName, endpoint string, logger *zap.Logger) (Tracer, error) {
	if endpoint == "" {
		if logger != nil {
			logger.Info("tracing disabled: no OTEL endpoint configured")
		}
		return NoOp, nil
	}

	exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint+"/v1/traces"))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", os.Getenv("LEGALRISK_ENV")),
		),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.2))),
		sdktrace.WithBatcher(exp,
			sdktrace.WithMaxExportBatchSize(512),
			sdktrace.WithBatchTimeout(5*time.Second),
		),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if logger != nil {
		logger.Info("tracing initialized", zap.String("service", serviceName), zap.String("endpoint", endpoint))
	}
	return &otelTracer{tracer: tp.Tracer(serviceName), shutdown: tp.Shutdown}, nil
}
