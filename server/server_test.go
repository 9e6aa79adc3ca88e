package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/sessionstream/component"
	apperrors "github.com/kbukum/sessionstream/errors"
	"github.com/kbukum/sessionstream/logger"
	"github.com/kbukum/sessionstream/security"
	"github.com/kbukum/sessionstream/security/tlstest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() Config {
	var cfg Config
	cfg.ApplyDefaults()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	return cfg
}

func noHealth(context.Context) []component.Health { return nil }

func startServer(t *testing.T, cfg Config) (*Server, *ServerComponent) {
	t.Helper()
	s := New(cfg, logger.NewDefault("test"))
	s.ApplyMiddleware("test", nil)
	s.RegisterDefaultEndpoints("test", noHealth)
	sc := NewComponent(s)

	if h := sc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Fatalf("expected unhealthy before start, got %s", h.Status)
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = sc.Stop(context.Background()) })
	return s, sc
}

func TestStartStop(t *testing.T) {
	s, sc := startServer(t, testConfig())

	if strings.HasSuffix(s.Addr(), ":0") {
		t.Fatalf("expected a bound port, got %s", s.Addr())
	}
	h := sc.Health(context.Background())
	if h.Status != component.StatusHealthy || !strings.Contains(h.Message, s.Addr()) {
		t.Errorf("expected healthy with address, got %+v", h)
	}

	resp, err := http.Get("http://" + s.Addr() + "/alive")
	if err != nil {
		t.Fatalf("GET /alive: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected middleware to set a request id")
	}

	if err := sc.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if _, err := http.Get("http://" + s.Addr() + "/alive"); err == nil {
		t.Error("expected connection failure after Stop")
	}
}

func portOf(t *testing.T, addr string) int {
	t.Helper()
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split %s: %v", addr, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		t.Fatalf("port %s: %v", port, err)
	}
	return n
}

func TestStopEndsOpenStreams(t *testing.T) {
	s := New(testConfig(), logger.NewDefault("test"))
	s.ApplyMiddleware("test", nil)

	opened := make(chan struct{})
	ended := make(chan struct{})
	s.GinEngine().GET("/stream", func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Status(http.StatusOK)
		c.Writer.Flush()
		close(opened)
		<-c.Request.Context().Done()
		close(ended)
	})

	sc := NewComponent(s)
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { _ = sc.Stop(context.Background()) })

	resp, err := http.Get("http://" + s.Addr() + "/stream")
	if err != nil {
		t.Fatalf("GET /stream: %v", err)
	}
	defer resp.Body.Close()
	select {
	case <-opened:
	case <-time.After(time.Second):
		t.Fatal("stream never opened")
	}

	start := time.Now()
	if err := sc.Stop(context.Background()); err != nil {
		t.Fatalf("Stop with an open stream: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("expected Stop to return promptly, took %v", elapsed)
	}
	select {
	case <-ended:
	default:
		t.Error("expected the stream handler to have returned")
	}
}

func TestStartBindFailure(t *testing.T) {
	s, _ := startServer(t, testConfig())

	cfg := testConfig()
	cfg.Port = portOf(t, s.Addr())
	other := New(cfg, logger.NewDefault("test"))
	if err := other.Start(context.Background()); err == nil {
		_ = other.Stop(context.Background())
		t.Fatal("expected bind error for a port in use")
	}
}

func TestStartTLS(t *testing.T) {
	certs := tlstest.New(t)
	cfg := testConfig()
	cfg.TLS = security.TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile}
	s, sc := startServer(t, cfg)

	if d := sc.Describe(); !strings.HasSuffix(d.Details, "(tls)") {
		t.Errorf("expected tls in description, got %q", d.Details)
	}

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig:   &tls.Config{RootCAs: certs.Pool},
		ForceAttemptHTTP2: true,
	}}
	resp, err := client.Get("https://" + s.Addr() + "/alive")
	if err != nil {
		t.Fatalf("GET /alive over TLS: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.ProtoMajor != 2 {
		t.Errorf("expected HTTP/2, got %s", resp.Proto)
	}
}

func TestStartMutualTLS(t *testing.T) {
	certs := tlstest.New(t)
	cfg := testConfig()
	cfg.TLS = security.TLSConfig{CertFile: certs.CertFile, KeyFile: certs.KeyFile, ClientCAFile: certs.CAFile}
	s, _ := startServer(t, cfg)

	anonymous := &http.Client{Transport: &http.Transport{TLSClientConfig: &tls.Config{RootCAs: certs.Pool}}}
	if resp, err := anonymous.Get("https://" + s.Addr() + "/alive"); err == nil {
		resp.Body.Close()
		t.Fatal("expected handshake failure without a client certificate")
	}

	authed := &http.Client{Transport: &http.Transport{TLSClientConfig: &tls.Config{
		RootCAs:      certs.Pool,
		Certificates: []tls.Certificate{certs.Pair},
	}}}
	resp, err := authed.Get("https://" + s.Addr() + "/alive")
	if err != nil {
		t.Fatalf("GET /alive with client certificate: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestStartTLSBadCert(t *testing.T) {
	cfg := testConfig()
	cfg.TLS = security.TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}
	s := New(cfg, logger.NewDefault("test"))
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for missing certificate")
	}
	if NewComponent(s).Health(context.Background()).Status != component.StatusUnhealthy {
		t.Error("expected server to stay unbound")
	}
}

func TestRoutesOrdering(t *testing.T) {
	s := New(testConfig(), logger.NewDefault("test"))
	s.RegisterDefaultEndpoints("test", noHealth)
	noop := func(*gin.Context) {}
	s.GinEngine().POST("/submit", noop)
	s.GinEngine().GET("/stream/:session_id", noop)
	s.GinEngine().GET("/", noop)

	routes := NewComponent(s).Routes()
	var paths []string
	for _, r := range routes {
		paths = append(paths, r.Method+" "+r.Path)
	}
	want := "GET /,GET /stream/:session_id,POST /submit,GET /alive,GET /health,GET /info,GET /ready"
	if got := strings.Join(paths, ","); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	for _, r := range routes[3:] {
		if !strings.HasSuffix(r.Handler, " (system)") {
			t.Errorf("expected %s to be marked as system, got %q", r.Path, r.Handler)
		}
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"github.com/kbukum/sessionstream/api.(*Handler).Submit-fm", "Handler.Submit"},
		{"github.com/kbukum/sessionstream/server/endpoint.Health.func1", "health"},
		{"github.com/kbukum/sessionstream/server.TestRoutesOrdering.func1", "testroutesordering"},
		{"main.index", "index"},
	}
	for _, tt := range tests {
		if got := formatHandlerName(tt.in); got != tt.want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"app error", apperrors.Conflict("busy"), http.StatusConflict, "CONFLICT"},
		{"wrapped app error", errors.Join(errors.New("ctx"), apperrors.NotFound("session", "x")), http.StatusNotFound, "NOT_FOUND"},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			RespondWithError(c, tt.err)

			if rr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			data, _ := io.ReadAll(rr.Body)
			if err := json.Unmarshal(data, &body); err != nil {
				t.Fatalf("decode %s: %v", data, err)
			}
			if body.Error.Code != tt.wantBody {
				t.Errorf("expected code %s, got %s", tt.wantBody, body.Error.Code)
			}
			if !c.IsAborted() {
				t.Error("expected the context to be aborted")
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	cfg := testConfig()
	if got := cfg.BodyLimit(); got != 64*1024 {
		t.Errorf("expected default 64KB, got %d", got)
	}
	cfg.MaxBodySize = ""
	if got := cfg.BodyLimit(); got != 0 {
		t.Errorf("expected 0 when unset, got %d", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port too high", func(c *Config) { c.Port = 70000 }, true},
		{"negative read timeout", func(c *Config) { c.ReadTimeout = -1 }, true},
		{"negative write timeout", func(c *Config) { c.WriteTimeout = -1 }, true},
		{"negative idle timeout", func(c *Config) { c.IdleTimeout = -1 }, true},
		{"negative rate", func(c *Config) { c.SubmitRatePerMinute = -1 }, true},
		{"tls cert without key", func(c *Config) { c.TLS.CertFile = "cert.pem" }, true},
		{"bad body size", func(c *Config) { c.MaxBodySize = "lots" }, true},
		{"empty body size", func(c *Config) { c.MaxBodySize = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
