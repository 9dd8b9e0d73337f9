// Package ratelimit 每用户滚动窗口准入控制
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultLimit  = 2
	DefaultWindow = time.Second
)

// Limiter 准入判定
// Allow 在窗口内已准入次数小于上限时记录本次并返回 true；
// 不同用户之间互不阻塞
type Limiter interface {
	Allow(ctx context.Context, userID string) bool
}
