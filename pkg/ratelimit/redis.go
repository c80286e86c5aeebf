package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements Limiter using Redis sorted sets
type RedisLimiter struct {
	redis redis.UniversalClient
	// prefix for redis keys to avoid collisions
	keyPrefix string
}

// NewRedisLimiter creates a new RedisLimiter
func NewRedisLimiter(client redis.UniversalClient, keyPrefix string) *RedisLimiter {
	return &RedisLimiter{
		redis:     client,
		keyPrefix: keyPrefix,
	}
}

func (l *RedisLimiter) formatKey(key string) string {
	return fmt.Sprintf("%s:ratelimit:%s", l.keyPrefix, key)
}

// Allow uses a sliding window: expired entries are trimmed, the remainder counted,
// and the current request recorded.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit Rate) (bool, Info) {
	now := time.Now()
	windowKey := l.formatKey(key)

	pipe := l.redis.Pipeline()
	windowStart := now.Add(-limit.Window).UnixNano()
	pipe.ZRemRangeByScore(ctx, windowKey, "0", strconv.FormatInt(windowStart, 10))
	card := pipe.ZCard(ctx, windowKey)
	pipe.ZAdd(ctx, windowKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, windowKey, limit.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		// fail open
		return true, Info{Limit: limit.Requests, Remaining: 0, Reset: now.Add(limit.Window)}
	}
	return decide(int(card.Val()), limit, now)
}

// Reset drops the window for key.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.redis.Del(ctx, l.formatKey(key)).Err()
}
