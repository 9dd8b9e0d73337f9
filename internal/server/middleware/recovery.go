package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"budgetpilot/internal/pkg/ctxutil"
	httputil "budgetpilot/internal/pkg/http"
	"budgetpilot/internal/pkg/metrics"
)

// Recovery 捕获 handler panic，记录请求上下文与堆栈后返回 50000
// 注册在 RequestID/Auth 之前也能拿到它们写入 c.Request 的 context
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPPanicsTotal.WithLabelValues(route).Inc()

			ctx := c.Request.Context()
			event := log.Error().
				Interface("panic", rec).
				Str("route", route).
				Str("method", c.Request.Method).
				Bytes("stack", debug.Stack())
			if requestID, ok := ctxutil.GetRequestID(ctx); ok {
				event = event.Str("request_id", requestID)
			}
			if userID, ok := ctxutil.GetUserID(ctx); ok {
				event = event.Str("user_id", userID)
			}
			event.Msg("Handler panicked")

			c.AbortWithStatusJSON(http.StatusInternalServerError, httputil.ErrorResponse{
				Code:    50000,
				Message: "Internal Server Error",
			})
		}()
		c.Next()
	}
}
