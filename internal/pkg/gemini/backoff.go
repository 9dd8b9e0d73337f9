package gemini

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultBackoffBase = 500 * time.Millisecond
	DefaultMaxJitter   = 100 * time.Millisecond
	DefaultMaxAttempts = 3
)

// BackoffScheduler 计算第 n 次失败后的等待时间并执行可取消的等待
// delay(n) = base * 2^(n-1) + jitter, jitter ∈ [0, maxJitter)
type BackoffScheduler struct {
	base      time.Duration
	maxJitter time.Duration
	jitter    func(max time.Duration) time.Duration
}

// NewBackoffScheduler 创建退避调度器，非正参数使用默认值（maxJitter 允许为 0）
func NewBackoffScheduler(base, maxJitter time.Duration) *BackoffScheduler {
	if base <= 0 {
		base = DefaultBackoffBase
	}
	if maxJitter < 0 {
		maxJitter = DefaultMaxJitter
	}
	return &BackoffScheduler{
		base:      base,
		maxJitter: maxJitter,
		jitter:    randomJitter,
	}
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max)))
}

// curve 不带抖动的指数曲线
func (b *BackoffScheduler) curve() *backoff.ExponentialBackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = b.base
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = time.Duration(math.MaxInt64)
	eb.MaxElapsedTime = 0
	eb.Reset()
	return eb
}

// BaseDelay 第 attempt 次失败后的确定性部分（attempt 从 1 开始）
func (b *BackoffScheduler) BaseDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	eb := b.curve()
	d := eb.NextBackOff()
	for i := 1; i < attempt; i++ {
		next := eb.NextBackOff()
		if next < d {
			// 溢出后保持上界
			break
		}
		d = next
	}
	return d
}

// Delay 第 attempt 次失败后的总等待时间
func (b *BackoffScheduler) Delay(attempt int) time.Duration {
	return b.BaseDelay(attempt) + b.jitter(b.maxJitter)
}

// Wait 等待 Delay(attempt)；ctx 取消时立即返回 CancelledError
func (b *BackoffScheduler) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(b.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return &CancelledError{Err: ctx.Err()}
	case <-timer.C:
		return nil
	}
}
