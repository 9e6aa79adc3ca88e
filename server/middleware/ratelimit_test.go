package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, func() time.Time { return now })

	allowed := func(key string) bool {
		_, ok := rl.allow(key)
		return ok
	}

	if !allowed("10.0.0.1") {
		t.Fatal("expected first request to pass")
	}
	now = now.Add(20 * time.Second)
	if !allowed("10.0.0.1") {
		t.Fatal("expected second request to pass")
	}
	wait, ok := rl.allow("10.0.0.1")
	if ok {
		t.Error("expected third request inside the window to be rejected")
	}
	if wait != 40*time.Second {
		t.Errorf("expected to wait 40s for the oldest hit to expire, got %v", wait)
	}
	if !allowed("10.0.0.2") {
		t.Error("expected another key to have its own budget")
	}

	now = now.Add(41 * time.Second)
	if !allowed("10.0.0.1") {
		t.Error("expected the oldest hit to have left the window")
	}
}

func TestRateLimiterSweepsIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(5, func() time.Time { return now })

	rl.allow("idle")
	now = now.Add(sweepEvery)
	rl.allow("active")

	if _, ok := rl.hits["idle"]; ok {
		t.Error("expected idle key to be swept")
	}
	if q := rl.hits["active"]; q == nil || q.Length() != 1 {
		t.Error("expected active key to be kept with one hit")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/submit", RateLimit(RateLimitConfig{RequestsPerMinute: 1}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	engine.ServeHTTP(first, httptest.NewRequest("POST", "/submit", http.NoBody))
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest("POST", "/submit", http.NoBody))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if ra := second.Header().Get("Retry-After"); ra == "" || ra == "0" {
		t.Errorf("expected a positive Retry-After, got %q", ra)
	}
}
