package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"leadflow-workers/internal/common/logger"
)

// Observability records orchestration turns through an OpenTelemetry meter
// exported on the default Prometheus registry, and traces them when a
// Jaeger endpoint is configured.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	meter          otelmetric.Meter
	turnCounter    otelmetric.Int64Counter
	turnDuration   otelmetric.Float64Histogram
	automation     otelmetric.Int64Counter
}

type Option func(*options)

type options struct {
	jaegerEndpoint string
}

// WithJaeger exports turn spans to a Jaeger collector endpoint.
func WithJaeger(endpoint string) Option {
	return func(o *options) { o.jaegerEndpoint = endpoint }
}

func New(serviceName string, log logger.Logger, opts ...Option) *Observability {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err.Error()})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	turnCounter, _ := meter.Int64Counter(
		"leadflow.turns",
		otelmetric.WithDescription("Number of orchestration turns processed"),
	)
	turnDuration, _ := meter.Float64Histogram(
		"leadflow.turn.duration",
		otelmetric.WithDescription("Orchestration turn duration"),
		otelmetric.WithUnit("ms"),
	)
	automation, _ := meter.Int64Counter(
		"leadflow.automation.outcomes",
		otelmetric.WithDescription("Automation outcomes produced per kind"),
	)

	obs := &Observability{
		meterProvider: provider,
		meter:         meter,
		turnCounter:   turnCounter,
		turnDuration:  turnDuration,
		automation:    automation,
	}
	if o.jaegerEndpoint != "" {
		tp, err := newTracerProvider(serviceName, o.jaegerEndpoint)
		if err != nil {
			log.Warn("Tracing disabled", map[string]interface{}{"error": err.Error()})
		} else {
			otel.SetTracerProvider(tp)
			obs.tracerProvider = tp
			obs.tracer = tp.Tracer(serviceName)
		}
	}
	return obs
}

// RecordTurn records one HandleMessage call. A nil receiver is a no-op.
func (o *Observability) RecordTurn(ctx context.Context, industry, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("industry", industry),
		attribute.String("status", status),
	)
	if o.turnCounter != nil {
		o.turnCounter.Add(ctx, 1, attrs)
	}
	if o.turnDuration != nil {
		o.turnDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

// RecordAutomation counts one automation outcome of the given kind.
func (o *Observability) RecordAutomation(ctx context.Context, kind string) {
	if o == nil || o.automation == nil {
		return
	}
	o.automation.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("kind", kind)))
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}
