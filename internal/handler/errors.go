package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"budgetpilot/internal/pkg/ctxutil"
	"budgetpilot/internal/pkg/gemini"
	httputil "budgetpilot/internal/pkg/http"
	"budgetpilot/internal/service"
)

// 对外的错误文案；5xx 不回显内部错误
const (
	msgUnauthorized    = "Unauthorized"
	msgInternal        = "Internal Server Error"
	msgNotConfigured   = "Assistant is not configured"
	msgRequestCanceled = "Request cancelled"
)

// CurrentUser 从认证中间件注入的 context 中取 user_id，缺失时直接写 401
func CurrentUser(c *gin.Context) (string, bool) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httputil.ErrorResponse{
			Code:    40101,
			Message: msgUnauthorized,
		})
		return "", false
	}
	return userID, true
}

// WriteError 服务层错误到 HTTP 状态码/错误码的映射
func WriteError(c *gin.Context, err error) {
	status, code, message := http.StatusInternalServerError, 50001, msgInternal

	var cfgErr *gemini.ConfigurationError
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		status, code, message = http.StatusBadRequest, 40001, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, code, message = http.StatusForbidden, 40301, err.Error()
	case errors.Is(err, service.ErrNotFound):
		status, code, message = http.StatusNotFound, 40401, err.Error()
	case errors.Is(err, service.ErrRateLimitExceeded):
		status, code, message = http.StatusTooManyRequests, 42901, err.Error()
	case errors.Is(err, service.ErrUnavailable):
		status, code, message = http.StatusServiceUnavailable, 50302, err.Error()
	case errors.As(err, &cfgErr):
		status, code, message = http.StatusServiceUnavailable, 50301, msgNotConfigured
	case gemini.IsCancelled(err), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code, message = http.StatusRequestTimeout, 40801, msgRequestCanceled
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}

	c.JSON(status, httputil.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
