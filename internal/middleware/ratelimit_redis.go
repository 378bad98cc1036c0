package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sticctape/barkeep-backend/pkg/logger"
)

// RedisRateLimiter is a fixed-window counter shared across instances, for
// deployments where the in-memory limiter's per-instance state is not good
// enough. Fails open: a Redis error admits the request rather than taking
// the API down with the cache.
type RedisRateLimiter struct {
	client   *redis.Client
	capacity int
	window   time.Duration
}

func NewRedisRateLimiter(client *redis.Client, capacity int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:   client,
		capacity: capacity,
		window:   window,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("Rate limit check failed, allowing request", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return true
	}

	return incr.Val() <= int64(l.capacity)
}
