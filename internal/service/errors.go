package service

import (
	"errors"
	"fmt"
	"regexp"

	"budgetpilot/internal/pkg/gemini"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("conversation not found")
	ErrForbidden         = errors.New("conversation does not belong to user")
	ErrInvalidArgument   = errors.New("either text or option must be provided")
	ErrUnavailable       = errors.New("feature unavailable")

	ErrInvalidScope     = &kindError{msg: "scope must be one of monthly, yearly, detailed", kind: ErrInvalidArgument}
	ErrHistoryNotFound  = &kindError{msg: "advice history entry not found", kind: ErrNotFound}
	ErrHistoryForbidden = &kindError{msg: "advice history entry does not belong to user", kind: ErrForbidden}
	ErrAdviceDisabled   = &kindError{msg: "ai advice is disabled", kind: ErrUnavailable}
)

// kindError 自定义文案，但仍然可以用 errors.Is 匹配到通用哨兵
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// 生成失败时写入会话的固定回复，不包含任何底层错误文本
const failureText = "Error contacting the assistant.\n\nPlease try again later."

// 失败分类，写入消息 metadata.error
const (
	failureConfiguration = "configuration"
	failureCancelled     = "cancelled"
	failureUpstream      = "upstream"
	failureTransport     = "transport"
	failureUnknown       = "unknown"
)

// secretPattern 查询串里的 key=/access_token= 以及 Bearer 头的值
var secretPattern = regexp.MustCompile(`(?i)((?:key|access_token)=|bearer\s+)[^&\s"']+`)

func failureKind(err error) string {
	var cfgErr *gemini.ConfigurationError
	var upErr *gemini.UpstreamError
	switch {
	case errors.As(err, &cfgErr):
		return failureConfiguration
	case gemini.IsCancelled(err):
		return failureCancelled
	case errors.As(err, &upErr):
		if upErr.StatusCode == 0 {
			return failureTransport
		}
		return fmt.Sprintf("%s_%d", failureUpstream, upErr.StatusCode)
	default:
		return failureUnknown
	}
}

// redactFailure 落库前再清洗一次凭证形态的片段
func redactFailure(err error) string {
	return secretPattern.ReplaceAllString(err.Error(), "${1}[REDACTED]")
}
