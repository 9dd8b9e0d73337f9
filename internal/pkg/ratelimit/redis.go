package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"budgetpilot/internal/pkg/cache"
	"budgetpilot/internal/pkg/id"
)

// slidingWindow ZSET 滑动窗口：清理过期成员、计数、准入时写入
// 窗口为闭区间 [now-window, now]，边界上的成员保留
// KEYS[1]=key ARGV: now_ms window_ms limit member
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', '(' .. (now - window))
if redis.call('ZCARD', key) >= limit then
	return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window + 1)
return 1
`)

// RedisLimiter 多实例共享的滚动窗口限流
// Redis 不可用时放行并记录告警
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter 创建 Redis 限流器，非正参数使用默认值
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow 实现 Limiter
func (l *RedisLimiter) Allow(ctx context.Context, userID string) bool {
	now := l.now().UnixMilli()
	res, err := slidingWindow.Run(ctx, l.client,
		[]string{cache.RateLimitKey(userID)},
		now, l.window.Milliseconds(), l.limit, id.New(),
	).Int()
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Rate limiter unavailable, admitting request")
		return true
	}
	return res == 1
}
