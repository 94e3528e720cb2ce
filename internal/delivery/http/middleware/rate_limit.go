package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-todo-backend/internal/delivery/http/response"
	"go-todo-backend/pkg/redis"
	"go-todo-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// Defaults to the client IP.
	KeyFunc   func(*gin.Context) string
	KeyPrefix string
	// Reject instead of falling back to memory when Redis errors.
	FailClosed bool
	// Overrides the shared client; nil means redis.Client().
	Client func() *goredis.Client
}

type rateLimitEntry struct {
	count   int
	resetAt time.Time
	mu      sync.Mutex
}

const memorySweepInterval = 5 * time.Minute

// memoryLimiter is the fallback when Redis is unavailable.
type memoryLimiter struct {
	entries sync.Map

	sweepMu   sync.Mutex
	lastSweep time.Time
}

// KEYS[1] = counter key, ARGV[1] = TTL in seconds.
// Returns {count, ttl_remaining}.
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

func (m *memoryLimiter) hit(key string, window time.Duration, now time.Time) (int, time.Time) {
	entryI, _ := m.entries.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(window)})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(window)
	}
	entry.count++
	return entry.count, entry.resetAt
}

// hitAndSweep counts a hit and drops expired keys at most once per interval.
func (m *memoryLimiter) hitAndSweep(key string, window time.Duration, now time.Time) (int, time.Time) {
	count, resetAt := m.hit(key, window, now)

	m.sweepMu.Lock()
	if now.Sub(m.lastSweep) > memorySweepInterval {
		m.lastSweep = now
		go m.sweep(now)
	}
	m.sweepMu.Unlock()
	return count, resetAt
}

func (m *memoryLimiter) sweep(now time.Time) {
	m.entries.Range(func(key, value interface{}) bool {
		entry := value.(*rateLimitEntry)
		entry.mu.Lock()
		if now.After(entry.resetAt) {
			m.entries.Delete(key)
		}
		entry.mu.Unlock()
		return true
	})
}

// GlobalRateLimitConfig covers every route, keyed by client IP.
func GlobalRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:ip:",
		KeyFunc:   func(c *gin.Context) string { return c.ClientIP() },
	}
}

// LoginRateLimitConfig is the stricter budget for password attempts.
func LoginRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:      limit,
		Window:     window,
		KeyPrefix:  "rl:login:",
		FailClosed: true,
		KeyFunc:    func(c *gin.Context) string { return c.ClientIP() },
	}
}

// RateLimitMiddleware counts requests per key in Redis, or in process memory
// when Redis is not configured.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if config.Client == nil {
		config.Client = redis.Client
	}

	return rateLimitHandler(config, &memoryLimiter{})
}

func rateLimitHandler(config RateLimitConfig, store *memoryLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)
		now := time.Now()

		var count int
		var resetAt time.Time

		if client := config.Client(); client != nil {
			var err error
			count, resetAt, err = checkRateLimitRedis(c.Request.Context(), client, fullKey, config.Window)
			if err != nil {
				if config.FailClosed {
					logRateLimitError(c, err)
					response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
					c.Abort()
					return
				}
				count, resetAt = store.hitAndSweep(fullKey, config.Window, now)
			}
		} else {
			count, resetAt = store.hitAndSweep(fullKey, config.Window, now)
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			security.DefaultLogger().LogRateLimitTriggered(
				c.Request.Context(),
				c.ClientIP(),
				c.GetHeader("User-Agent"),
				c.GetString("RequestID"),
				c.FullPath(),
			)

			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func checkRateLimitRedis(ctx context.Context, client *goredis.Client, key string, window time.Duration) (int, time.Time, error) {
	result, err := client.Eval(ctx, rateLimitLuaScript, []string{key}, int(window.Seconds())).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)
	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

func logRateLimitError(c *gin.Context, err error) {
	security.DefaultLogger().Log(c.Request.Context(), security.SecurityEvent{
		Event: security.EventRateLimitTriggered,
		IP:    c.ClientIP(),
		Details: map[string]interface{}{
			"error_type": "redis_error",
			"error":      err.Error(),
		},
	})
}
