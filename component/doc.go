// Package component defines the lifecycle contract shared by the runtime
// pieces of sessionstream (HTTP server, session registry, producer pool).
//
// Components are registered in dependency order, started in that order, and
// stopped in reverse.
//
//	reg := component.NewRegistry()
//	reg.Register(sessions)
//	reg.Register(httpServer)
//	reg.StartAll(ctx)
//	defer reg.StopAll(ctx)
package component
