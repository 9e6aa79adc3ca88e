package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/sessionstream/errors"
)

const (
	window     = time.Minute
	sweepEvery = 5 * time.Minute
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	// RequestsPerMinute is the budget per key. Values <= 0 mean 60.
	RequestsPerMinute int
	// KeyFunc picks the key a request is counted under. Defaults to the
	// client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimit counts requests per key over a sliding one-minute window. A
// request over budget is answered 429 with a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	rl := newRateLimiter(cfg.RequestsPerMinute, time.Now)

	return func(c *gin.Context) {
		wait, ok := rl.allow(cfg.KeyFunc(c))
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			appErr := apperrors.RateLimited()
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}
		c.Next()
	}
}

// IPBasedKey keys requests by client IP.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// rateLimiter keeps, per key, a FIFO of the request times still inside the
// window. Oldest entries sit at the front and are dropped as they expire.
type rateLimiter struct {
	mu        sync.Mutex
	hits      map[string]*queue.Queue
	limit     int
	now       func() time.Time
	lastSweep time.Time
}

func newRateLimiter(limit int, now func() time.Time) *rateLimiter {
	return &rateLimiter{
		hits:      make(map[string]*queue.Queue),
		limit:     limit,
		now:       now,
		lastSweep: now(),
	}
}

// allow records a hit for key if the budget has room. Otherwise it reports
// how long until the oldest hit leaves the window.
func (rl *rateLimiter) allow(key string) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-window)
	if now.Sub(rl.lastSweep) >= sweepEvery {
		rl.sweep(cutoff)
		rl.lastSweep = now
	}

	q, ok := rl.hits[key]
	if !ok {
		q = queue.New()
		rl.hits[key] = q
	}
	expire(q, cutoff)
	if q.Length() >= rl.limit {
		return q.Peek().(time.Time).Sub(cutoff), false
	}
	q.Add(now)
	return 0, true
}

// sweep forgets keys whose hits have all expired. Caller holds mu.
func (rl *rateLimiter) sweep(cutoff time.Time) {
	for key, q := range rl.hits {
		if expire(q, cutoff); q.Length() == 0 {
			delete(rl.hits, key)
		}
	}
}

func expire(q *queue.Queue, cutoff time.Time) {
	for q.Length() > 0 && !q.Peek().(time.Time).After(cutoff) {
		q.Remove()
	}
}
