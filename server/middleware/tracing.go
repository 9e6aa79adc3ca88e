package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/sessionstream/observability"
)

// GinTracing opens one server span per routed request and records request
// metrics keyed by method and route pattern. metrics may be nil.
func GinTracing(serviceName string, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, req := observability.StartRequest(c.Request.Context(), serviceName,
			c.Request.Method+" "+route, c.GetHeader(HeaderRequestID), metrics)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		var err error
		if last := c.Errors.Last(); last != nil {
			err = last.Err
		}
		req.End(ctx, c.Writer.Status(), err)
	}
}
