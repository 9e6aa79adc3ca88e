package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/sessionstream/logger"
	"github.com/kbukum/sessionstream/observability"
	"github.com/kbukum/sessionstream/server/endpoint"
	"github.com/kbukum/sessionstream/server/middleware"
)

// Server is the HTTP server backed by Gin. Routes are registered on the
// engine; server-wide middleware wraps the engine as plain net/http.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	h2s        *http2.Server
	config     Config
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
	chain    middleware.Middleware

	// cancelBase cancels the context every request derives from.
	cancelBase context.CancelFunc
}

// New creates a new Server. No middleware is applied until ApplyMiddleware.
func New(cfg Config, log *logger.Logger) *Server {
	if gin.Mode() != gin.TestMode {
		if zerolog.GlobalLevel() <= zerolog.DebugLevel {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	base, cancelBase := context.WithCancel(context.Background())
	s := &Server{
		engine:     engine,
		h2s:        h2s,
		config:     cfg,
		log:        log.WithComponent("server"),
		cancelBase: cancelBase,
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		BaseContext:  func(net.Listener) context.Context { return base },
	}
	return s
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the complete handler: middleware chain around the engine,
// wrapped for h2c. Tests mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	s.mu.Lock()
	chain := s.chain
	s.mu.Unlock()

	var h http.Handler = s.engine
	if chain != nil {
		h = chain(h)
	}
	return h2c.NewHandler(h, s.h2s)
}

// ApplyMiddleware installs the standard stack: recovery, request id, CORS,
// body-size limit and request logging around the engine, and tracing inside
// it so spans carry the matched route.
func (s *Server) ApplyMiddleware(serviceName string, metrics *observability.Metrics) {
	mws := []middleware.Middleware{
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(&s.config.CORS),
	}
	if limit := s.config.BodyLimit(); limit > 0 {
		mws = append(mws, middleware.BodySizeLimit(limit))
	}
	mws = append(mws, middleware.RequestLogger(s.log))

	s.mu.Lock()
	s.chain = middleware.Chain(mws...)
	s.mu.Unlock()

	s.engine.Use(middleware.GinTracing(serviceName, metrics))
}

// RegisterDefaultEndpoints registers /health, /alive, /ready and /info.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/alive", endpoint.Liveness(serviceName))
	s.engine.GET("/ready", endpoint.Readiness(serviceName, checker))
	s.engine.GET("/info", endpoint.Info(serviceName))
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine. With TLS configured the server
// negotiates h2 over ALPN, otherwise it accepts h2c.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer.Handler = s.Handler()

	tlsConfig, err := s.config.TLS.Build()
	if err != nil {
		return fmt.Errorf("server tls: %w", err)
	}
	if tlsConfig != nil {
		s.httpServer.TLSConfig = tlsConfig
		if err := http2.ConfigureServer(s.httpServer, s.h2s); err != nil {
			return fmt.Errorf("server http2: %w", err)
		}
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		var err error
		if tlsConfig != nil {
			err = s.httpServer.ServeTLS(listener, "", "")
		} else {
			err = s.httpServer.Serve(listener)
		}
		if err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String(), "tls", tlsConfig != nil))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline. Request
// contexts are cancelled first, so open streams end as disconnected instead
// of holding Shutdown until the deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")
	s.cancelBase()

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", logger.Fields(logger.FieldError, err.Error()))
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
