package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}

// RedisRateLimiter keeps one counter per key and window in Redis, so
// limits hold across instances.
type RedisRateLimiter struct {
	client      *redis.Client
	prefix      string
	window      time.Duration
	maxRequests int64
	now         func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, prefix string, window time.Duration, maxRequests int64) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:      client,
		prefix:      prefix + "ratelimit:",
		window:      window,
		maxRequests: maxRequests,
		now:         time.Now,
	}
}

func (rl *RedisRateLimiter) key(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s%s:%d", rl.prefix, key, windowStart.Unix())
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := rl.now().Truncate(rl.window)
	resetAt := windowStart.Add(rl.window)
	redisKey := rl.key(key, windowStart)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireAt(ctx, redisKey, resetAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limiter error: %w", err)
	}

	count := incr.Val()
	remaining := rl.maxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: count <= rl.maxRequests, Remaining: remaining, ResetAt: resetAt}, nil
}

// Reset clears the current window for key.
func (rl *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return rl.client.Del(ctx, rl.key(key, rl.now().Truncate(rl.window))).Err()
}
