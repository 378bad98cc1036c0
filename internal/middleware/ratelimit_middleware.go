package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/sticctape/barkeep-backend/internal/errors"
	"github.com/sticctape/barkeep-backend/pkg/logger"
)

// Limiter decides whether a request from key may proceed. Implemented by
// MemoryRateLimiter and RedisRateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type bucket struct {
	tokens   int
	refillAt time.Time
}

// MemoryRateLimiter is a per-key token bucket held in process memory.
// Refill grants capacity tokens per full elapsed window; the refill
// timestamp only advances once a whole window has passed, so a bucket
// refills to capacity, not unbounded. Best-effort: state is not shared
// across instances.
type MemoryRateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	window   time.Duration
	now      func() time.Time
}

func NewMemoryRateLimiter(capacity int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		buckets:  make(map[string]*bucket),
		capacity: capacity,
		window:   window,
		now:      time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, refillAt: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.refillAt)
	refill := int(elapsed/l.window) * l.capacity
	if b.tokens+refill > l.capacity {
		b.tokens = l.capacity
	} else {
		b.tokens += refill
	}
	if elapsed >= l.window {
		b.refillAt = now
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Prune drops buckets idle for at least age. Called periodically so the
// bucket map does not grow with every address ever seen.
func (l *MemoryRateLimiter) Prune(age time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	// A bucket idle past a full window refills to capacity on its next
	// request anyway, so dropping it changes nothing for that key.
	cutoff := l.now().Add(-age)
	removed := 0
	for key, b := range l.buckets {
		if b.refillAt.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// RateLimitMiddleware enforces the limiter per client address, keyed by the
// trusted connecting-IP header. It runs before any business logic; the 429
// still carries CORS headers because the CORS guard shapes them first.
func RateLimitMiddleware(limiter Limiter, ipHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(ipHeader)
		if key == "" {
			key = "unknown"
		}

		if !limiter.Allow(c.Request.Context(), key) {
			logger.Warn("Rate limit exceeded", map[string]interface{}{
				"key":  key,
				"path": c.Request.URL.Path,
			})
			apperrors.TooManyRequests(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
