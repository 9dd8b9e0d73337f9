package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"budgetpilot/internal/pkg/metrics"
)

// Metrics 按路由模板统计请求数，未匹配路由记为 unmatched
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Inc()
	}
}
