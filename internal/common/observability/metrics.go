// Package observability exposes matcher and job activity through an
// OpenTelemetry meter backed by the Prometheus exporter, and traces matcher
// queries through an OpenTelemetry tracer provider.
package observability

import (
	"context"
	"time"

	"motor-picker/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	queryCounter   otelmetric.Int64Counter
	queryDuration  otelmetric.Float64Histogram
	resultsCounter otelmetric.Int64Counter
}

// New registers the exporter on the default Prometheus registry. Tracer
// options, such as a span processor, are passed to the tracer provider. When
// the exporter cannot be built the returned value traces but records no
// metrics.
func New(serviceName string, log logger.Logger, traceOpts ...sdktrace.TracerProviderOption) *Observability {
	tp := sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tp)
	o := &Observability{
		tracerProvider: tp,
		tracer:         tp.Tracer(serviceName),
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err})
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	queryCounter, _ := meter.Int64Counter(
		"motor.queries.processed",
		otelmetric.WithDescription("Number of motor queries processed"),
	)

	queryDuration, _ := meter.Float64Histogram(
		"motor.queries.duration",
		otelmetric.WithDescription("Motor query processing duration"),
		otelmetric.WithUnit("ms"),
	)

	resultsCounter, _ := meter.Int64Counter(
		"motor.suggestions.returned",
		otelmetric.WithDescription("Number of motor suggestions returned"),
	)

	o.meterProvider = provider
	o.meter = meter
	o.queryCounter = queryCounter
	o.queryDuration = queryDuration
	o.resultsCounter = resultsCounter
	return o
}

// StartSpan opens a span under ctx. Without a tracer it returns the span
// already in ctx, which is a no-op span when there is none.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordQuery counts one query for the given channel (http, worker, cli) and
// status, along with its duration and the number of suggestions it produced.
func (o *Observability) RecordQuery(ctx context.Context, channel, status string, duration time.Duration, results int) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("status", status),
	)
	if o.queryCounter != nil {
		o.queryCounter.Add(ctx, 1, attrs)
	}
	if o.queryDuration != nil {
		o.queryDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
	if o.resultsCounter != nil && results > 0 {
		o.resultsCounter.Add(ctx, int64(results), otelmetric.WithAttributes(
			attribute.String("channel", channel),
		))
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
