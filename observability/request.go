package observability

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Request is one traced HTTP request. Its route is the pattern, never the
// raw path, so /stream/:session_id is one span name and one metric series.
type Request struct {
	service string
	route   string
	start   time.Time
	span    trace.Span
	metrics *Metrics
}

// StartRequest opens a server span for the request and counts it as in
// flight. metrics may be nil.
func StartRequest(ctx context.Context, service, route, requestID string, metrics *Metrics) (context.Context, *Request) {
	attrs := []attribute.KeyValue{attribute.String(AttrRoute, route)}
	if requestID != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, requestID))
	}
	ctx, span := StartSpan(ctx, SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...))

	if metrics != nil {
		metrics.RecordRequestStart(ctx)
	}
	return ctx, &Request{
		service: service,
		route:   route,
		start:   time.Now(),
		span:    span,
		metrics: metrics,
	}
}

// End closes the span with the response status. Server errors mark the
// span as failed.
func (r *Request) End(ctx context.Context, status int, err error) {
	if err != nil {
		r.span.RecordError(err)
	}
	if status >= 500 {
		r.span.SetStatus(codes.Error, strconv.Itoa(status))
	}
	r.span.SetAttributes(attribute.Int(AttrStatusCode, status))
	r.span.End()

	if r.metrics != nil {
		r.metrics.RecordRequestEnd(ctx, r.service, r.route, strconv.Itoa(status), time.Since(r.start))
	}
}
