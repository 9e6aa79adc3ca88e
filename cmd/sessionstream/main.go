// Command sessionstream serves per-client event streams: POST /submit
// creates a session and starts its producer, GET /stream/:session_id
// delivers the session's events as Server-Sent Events.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/sessionstream/api"
	"github.com/kbukum/sessionstream/bootstrap"
	"github.com/kbukum/sessionstream/component"
	"github.com/kbukum/sessionstream/config"
	"github.com/kbukum/sessionstream/observability"
	"github.com/kbukum/sessionstream/producer"
	"github.com/kbukum/sessionstream/server"
	"github.com/kbukum/sessionstream/server/middleware"
	"github.com/kbukum/sessionstream/session"
	"github.com/kbukum/sessionstream/sse"
	"github.com/kbukum/sessionstream/version"
)

const serviceName = "sessionstream"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.LoadConfig(serviceName, &cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = version.GetShortVersion()
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		return err
	}
	if err := wire(app); err != nil {
		return err
	}
	return app.Run(ctx)
}

// wire builds the components and registers them in start order. Shutdown
// runs in reverse: the HTTP server stops taking streams, producers are
// cancelled and awaited, then the remaining sessions are torn down.
func wire(app *bootstrap.App[*Config]) error {
	cfg := app.Cfg

	telemetry := observability.NewTelemetry(cfg.Observability, observability.ServiceInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Environment: cfg.Environment,
	})
	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	registry := session.NewRegistry(cfg.Session, session.WithObserver(metrics))
	producers := producer.New(cfg.Producer, registry, producer.WithObserver(metrics))
	dispatcher := sse.NewDispatcher(cfg.Stream, registry, sse.WithObserver(metrics))

	srv := server.New(cfg.Server, app.Logger)
	srv.ApplyMiddleware(cfg.Name, metrics)
	srv.RegisterDefaultEndpoints(cfg.Name, app.Components.HealthAll)

	var submitMiddleware []gin.HandlerFunc
	if cfg.Server.SubmitRatePerMinute > 0 {
		submitMiddleware = append(submitMiddleware, middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.Server.SubmitRatePerMinute,
		}))
	}
	api.NewHandler(registry, producers, dispatcher).Register(srv.GinEngine(), submitMiddleware...)

	for _, c := range []component.Component{telemetry, registry, producers, server.NewComponent(srv)} {
		if err := app.RegisterComponent(c); err != nil {
			return err
		}
	}
	return nil
}
