package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neilboltonAD/marketplace-admin-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics observes request latency per route template. Scrapes of /metrics and websocket
// upgrades are not observed.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || skipMetrics(c) {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func skipMetrics(c *gin.Context) bool {
	if c.Request.URL.Path == "/metrics" {
		return true
	}
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}
