package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// newMeterProvider exports metrics over OTLP/HTTP every cfg.Interval and
// installs the provider globally.
func newMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the service's instruments. It satisfies the observer
// interfaces of the session registry and the stream dispatcher.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter

	sessionsCreated metric.Int64Counter
	sessionsRemoved metric.Int64Counter
	streamsActive   metric.Int64UpDownCounter
	streamsClosed   metric.Int64Counter
	streamDuration  metric.Float64Histogram
	eventsDelivered metric.Int64Counter
	keepAlivesSent  metric.Int64Counter
	producerRuns    metric.Int64Counter
	producerTime    metric.Float64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)

	if m.requestTotal, err = meter.Int64Counter("http.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("creating http.request.total counter: %w", err)
	}
	if m.requestDuration, err = meter.Float64Histogram("http.request.duration",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating http.request.duration histogram: %w", err)
	}
	if m.requestActive, err = meter.Int64UpDownCounter("http.request.active",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("creating http.request.active gauge: %w", err)
	}

	if m.sessionsCreated, err = meter.Int64Counter("sessions.created",
		metric.WithDescription("Sessions registered by submissions"),
	); err != nil {
		return nil, fmt.Errorf("creating sessions.created counter: %w", err)
	}
	if m.sessionsRemoved, err = meter.Int64Counter("sessions.removed",
		metric.WithDescription("Sessions torn down"),
	); err != nil {
		return nil, fmt.Errorf("creating sessions.removed counter: %w", err)
	}
	if m.streamsActive, err = meter.Int64UpDownCounter("streams.active",
		metric.WithDescription("Streams currently attached to a session"),
	); err != nil {
		return nil, fmt.Errorf("creating streams.active gauge: %w", err)
	}
	if m.streamsClosed, err = meter.Int64Counter("streams.closed",
		metric.WithDescription("Streams ended, by result"),
	); err != nil {
		return nil, fmt.Errorf("creating streams.closed counter: %w", err)
	}
	if m.streamDuration, err = meter.Float64Histogram("streams.duration",
		metric.WithDescription("Lifetime of streams in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating streams.duration histogram: %w", err)
	}
	if m.eventsDelivered, err = meter.Int64Counter("events.delivered",
		metric.WithDescription("Event frames written to streams"),
	); err != nil {
		return nil, fmt.Errorf("creating events.delivered counter: %w", err)
	}
	if m.keepAlivesSent, err = meter.Int64Counter("keepalives.sent",
		metric.WithDescription("Keep-alive comments written to streams"),
	); err != nil {
		return nil, fmt.Errorf("creating keepalives.sent counter: %w", err)
	}
	if m.producerRuns, err = meter.Int64Counter("producer.runs",
		metric.WithDescription("Producer runs ended, by outcome"),
	); err != nil {
		return nil, fmt.Errorf("creating producer.runs counter: %w", err)
	}
	if m.producerTime, err = meter.Float64Histogram("producer.duration",
		metric.WithDescription("Duration of producer runs in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("creating producer.duration histogram: %w", err)
	}

	return &m, nil
}

// RecordRequestStart increments the active request count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements active requests and records the completed request.
func (m *Metrics) RecordRequestEnd(ctx context.Context, service, route, status string, duration time.Duration) {
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("route", route),
		attribute.String("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("route", route),
	))
}

// SessionCreated counts a new session.
func (m *Metrics) SessionCreated(ctx context.Context) {
	m.sessionsCreated.Add(ctx, 1)
}

// SessionRemoved counts a torn-down session.
func (m *Metrics) SessionRemoved(ctx context.Context) {
	m.sessionsRemoved.Add(ctx, 1)
}

// StreamOpened tracks a newly attached stream.
func (m *Metrics) StreamOpened(ctx context.Context) {
	m.streamsActive.Add(ctx, 1)
}

// StreamClosed records the end of a stream and why it ended.
func (m *Metrics) StreamClosed(ctx context.Context, result string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String(AttrStreamResult, result))
	m.streamsActive.Add(ctx, -1)
	m.streamsClosed.Add(ctx, 1, attrs)
	m.streamDuration.Record(ctx, d.Seconds(), attrs)
}

// EventDelivered counts an event frame written to a client.
func (m *Metrics) EventDelivered(ctx context.Context) {
	m.eventsDelivered.Add(ctx, 1)
}

// KeepAliveSent counts a keep-alive comment written to a client.
func (m *Metrics) KeepAliveSent(ctx context.Context) {
	m.keepAlivesSent.Add(ctx, 1)
}

// ProducerFinished records how a producer run ended.
func (m *Metrics) ProducerFinished(ctx context.Context, outcome string, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String(AttrProducerResult, outcome))
	m.producerRuns.Add(ctx, 1, attrs)
	m.producerTime.Record(ctx, d.Seconds(), attrs)
}
