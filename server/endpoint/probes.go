package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/sessionstream/component"
	"github.com/kbukum/sessionstream/version"
)

var startedAt = time.Now()

// HealthChecker reports the health of every registered component.
type HealthChecker func(ctx context.Context) []component.Health

type probe struct {
	Status     string             `json:"status"`
	Service    string             `json:"service"`
	Timestamp  string             `json:"timestamp"`
	Components []component.Health `json:"components,omitempty"`
}

func newProbe(service, status string) probe {
	return probe{Status: status, Service: service, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// Health reports every component plus an overall status. Unhealthy beats
// degraded, and an unhealthy service answers 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := check(c.Request.Context(), checker)
		status := overall(components)

		body := newProbe(serviceName, string(status))
		body.Components = components
		c.JSON(codeFor(status), body)
	}
}

// Readiness is 200 "ready" until some component turns unhealthy. Degraded
// components still accept traffic.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := overall(check(c.Request.Context(), checker))
		word := "ready"
		if status == component.StatusUnhealthy {
			word = "not_ready"
		}
		c.JSON(codeFor(status), newProbe(serviceName, word))
	}
}

// Liveness answers 200 as long as the process serves HTTP.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, newProbe(serviceName, "alive"))
	}
}

type buildInfo struct {
	Service string `json:"service"`
	*version.Info
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// Info reports build metadata and process uptime.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		c.JSON(http.StatusOK, buildInfo{
			Service:   serviceName,
			Info:      version.GetVersionInfo(),
			Uptime:    now.Sub(startedAt).Round(time.Second).String(),
			Timestamp: now.UTC().Format(time.RFC3339),
		})
	}
}

func check(ctx context.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(ctx)
}

func overall(components []component.Health) component.HealthStatus {
	status := component.StatusHealthy
	for _, h := range components {
		switch h.Status {
		case component.StatusUnhealthy:
			return component.StatusUnhealthy
		case component.StatusDegraded:
			status = component.StatusDegraded
		}
	}
	return status
}

func codeFor(status component.HealthStatus) int {
	if status == component.StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
