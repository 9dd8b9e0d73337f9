package gemini

import (
	"errors"
	"fmt"
)

// ErrNoCredential 没有显式凭证且委托凭证获取失败
var ErrNoCredential = errors.New("no usable credential")

// ConfigurationError 发出任何网络请求之前的配置类失败
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("gemini configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// UpstreamError 重试耗尽后的最终失败，携带最后一次的状态码与响应体片段
// StatusCode 为 0 表示最后一次是传输层失败
type UpstreamError struct {
	StatusCode int
	Body       string
	Attempts   int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("gemini upstream failed after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("gemini upstream failed after %d attempts: status %d: %s", e.Attempts, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// CancelledError 调用方取消了执行（包括退避等待期间）
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("gemini request cancelled: %v", e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

// IsCancelled 判断错误链中是否有 CancelledError
func IsCancelled(err error) bool {
	var ce *CancelledError
	return errors.As(err, &ce)
}
