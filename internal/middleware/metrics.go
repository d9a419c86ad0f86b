package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sit-council/council-api/internal/service"
)

// Metrics times each request and reports it under the route template, so
// /meetings/:id stays one series regardless of the concrete ID.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
