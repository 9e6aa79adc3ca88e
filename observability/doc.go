// Package observability wires OpenTelemetry tracing and metrics into the
// service.
//
// The Telemetry component installs OTLP/HTTP tracer and meter providers on
// Start when export is enabled, and flushes them on Stop. When export is
// disabled the global no-op providers stay in place.
//
//	tel := observability.NewTelemetry(cfg.Observability, observability.ServiceInfo{Name: "sessionstream"})
//	metrics, err := observability.NewMetrics(observability.Meter("sessionstream"))
//	registry := session.NewRegistry(cfg.Session, session.WithObserver(metrics))
//	dispatcher := sse.NewDispatcher(cfg.Stream, registry, sse.WithObserver(metrics))
//
// Spans: http.request per routed request (see StartRequest), sse.stream
// per stream, producer.run per producer run.
package observability
