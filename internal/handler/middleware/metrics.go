package middleware

import (
	"strconv"
	"time"

	"github.com/avidcandu/ChatSnap/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// RequestMetrics records request counts and latency per route template.
// Unmatched paths share one label to keep cardinality bounded.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
