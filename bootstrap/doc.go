// Package bootstrap runs the application lifecycle: config defaults and
// validation, logger setup, ordered component start, configuration
// callbacks, a ready check, a startup summary, and graceful shutdown on
// SIGINT/SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(registry)
//	app.RegisterComponent(httpServer)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*Config]) error {
//	    return nil
//	})
//	err = app.Run(ctx)
package bootstrap
