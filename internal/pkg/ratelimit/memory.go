package ratelimit

import (
	"context"
	"sync"
	"time"
)

// bucket 单个用户的准入时间戳，按时间升序
type bucket struct {
	mu     sync.Mutex
	stamps []time.Time
	dead   bool
}

// MemoryLimiter 进程内滚动窗口限流
// 每个用户一把锁，用户之间无共享锁
type MemoryLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	buckets sync.Map // userID -> *bucket
}

// NewMemoryLimiter 创建进程内限流器，非正参数使用默认值
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &MemoryLimiter{limit: limit, window: window, now: time.Now}
}

// Allow 实现 Limiter
func (l *MemoryLimiter) Allow(_ context.Context, userID string) bool {
	for {
		v, _ := l.buckets.LoadOrStore(userID, &bucket{})
		b := v.(*bucket)

		b.mu.Lock()
		if b.dead {
			// 已被 Sweep 回收，重新取
			b.mu.Unlock()
			continue
		}

		now := l.now()
		b.prune(now.Add(-l.window))
		if len(b.stamps) >= l.limit {
			b.mu.Unlock()
			return false
		}
		b.stamps = append(b.stamps, now)
		b.mu.Unlock()
		return true
	}
}

// prune 丢弃早于 cutoff 的时间戳，恰好落在 cutoff 上的仍计入窗口
func (b *bucket) prune(cutoff time.Time) {
	i := 0
	for i < len(b.stamps) && b.stamps[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		b.stamps = append(b.stamps[:0], b.stamps[i:]...)
	}
}

// Sweep 回收窗口内没有记录的用户桶，返回回收数量
func (l *MemoryLimiter) Sweep() int {
	cutoff := l.now().Add(-l.window)
	removed := 0

	l.buckets.Range(func(key, value any) bool {
		b := value.(*bucket)
		b.mu.Lock()
		b.prune(cutoff)
		if len(b.stamps) == 0 {
			b.dead = true
			l.buckets.Delete(key)
			removed++
		}
		b.mu.Unlock()
		return true
	})
	return removed
}

// Run 周期性 Sweep，直到 ctx 结束
func (l *MemoryLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
