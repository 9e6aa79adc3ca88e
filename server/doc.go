// Package server provides the HTTP server: a Gin engine behind a
// net/http middleware chain, served with HTTP/2 cleartext (h2c) support and
// managed as a lifecycle component.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation into the logger context
//   - CORS: cross-origin resource sharing
//   - BodySizeLimit: request body size limit
//   - RequestLogger: method, path, status and duration per request
//   - GinTracing: one span and request metrics per routed request
//   - RateLimit: per-client sliding-window limit for individual routes
//
// # Endpoints
//
// Built-in endpoints (server/endpoint): /health, /alive, /ready, /info.
package server
