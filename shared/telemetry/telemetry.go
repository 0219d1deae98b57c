// Package telemetry wires tracing and metrics for every service. Spans and
// metrics ship to an OTLP collector; the same meter provider also feeds the
// Prometheus scrape endpoint each service exposes.
package telemetry

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	metricSDK "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	traceSDK "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	metricExportInterval = 30 * time.Second
	shutdownTimeout      = 5 * time.Second
)

// Config identifies the service to the collector.
type Config struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string
}

// Telemetry carries one service's tracer and meter. It travels through the
// request context so handlers record metrics without extra wiring.
type Telemetry struct {
	serviceName string
	tracer      trace.Tracer
	meter       metric.Meter
}

// Init sets the global OTel providers: traces batched over OTLP, metrics
// read by both an OTLP periodic reader and the Prometheus handler. The
// returned func flushes and stops whatever was brought up.
func Init(ctx context.Context, config Config) (*Telemetry, func(), error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "building otel resource")
	}

	var stops []func(context.Context) error
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, stop := range stops {
			stop(ctx)
		}
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(config.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "building trace exporter")
	}
	traceProvider := traceSDK.NewTracerProvider(
		traceSDK.WithBatcher(traceExporter),
		traceSDK.WithResource(res),
		traceSDK.WithSampler(traceSDK.AlwaysSample()),
	)
	stops = append(stops, traceProvider.Shutdown)

	promReader, err := prometheus.New()
	if err != nil {
		shutdown()
		return nil, nil, errors.Wrap(err, "building prometheus reader")
	}
	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(config.OTLPEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		shutdown()
		return nil, nil, errors.Wrap(err, "building metric exporter")
	}
	meterProvider := metricSDK.NewMeterProvider(
		metricSDK.WithResource(res),
		metricSDK.WithReader(promReader),
		metricSDK.WithReader(metricSDK.NewPeriodicReader(metricExporter,
			metricSDK.WithInterval(metricExportInterval),
		)),
	)
	stops = append(stops, meterProvider.Shutdown)

	otel.SetTracerProvider(traceProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	tel := &Telemetry{
		serviceName: config.ServiceName,
		tracer:      otel.Tracer(config.ServiceName),
		meter:       otel.Meter(config.ServiceName),
	}
	return tel, shutdown, nil
}

type contextKey struct{}

// WithTelemetry injects the service telemetry into ctx.
func WithTelemetry(ctx context.Context, tel *Telemetry) context.Context {
	return context.WithValue(ctx, contextKey{}, tel)
}

// FromContext returns the telemetry carried by ctx, or nil.
func FromContext(ctx context.Context) *Telemetry {
	tel, _ := ctx.Value(contextKey{}).(*Telemetry)
	return tel
}

// StartSpan opens a span on the context's tracer. Without telemetry in the
// context the span comes from the global provider, which defaults to no-op,
// so event handlers and tests work unwired.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if tel := FromContext(ctx); tel != nil {
		return tel.tracer.Start(ctx, name, opts...)
	}
	return otel.Tracer("fallback").Start(ctx, name, opts...)
}

func meterFrom(ctx context.Context) metric.Meter {
	if tel := FromContext(ctx); tel != nil {
		return tel.meter
	}
	return otel.Meter("fallback")
}

func serviceFrom(ctx context.Context) string {
	if tel := FromContext(ctx); tel != nil {
		return tel.serviceName
	}
	return "unknown"
}

// RecordCounter adds value to the named counter, tagged with the service.
func RecordCounter(ctx context.Context, name, description string, value int64, attrs ...attribute.KeyValue) {
	counter, err := meterFrom(ctx).Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return
	}
	attrs = append(attrs, attribute.String("service", serviceFrom(ctx)))
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// RecordHistogram records value on the named histogram, tagged with the
// service.
func RecordHistogram(ctx context.Context, name, description string, value float64, attrs ...attribute.KeyValue) {
	histogram, err := meterFrom(ctx).Float64Histogram(name, metric.WithDescription(description))
	if err != nil {
		return
	}
	attrs = append(attrs, attribute.String("service", serviceFrom(ctx)))
	histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}
