package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"realestate-backend/internal/transport"
)

const rateLimitMessage = "Too many requests from this IP, please try again later."

// Counter increments the hit count for key inside a fixed window and returns
// the count including this hit.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RateLimiter struct {
	limit   int
	window  time.Duration
	counter Counter
	log     *slog.Logger
}

func NewRateLimiter(limit int, window time.Duration, counter Counter, log *slog.Logger) *RateLimiter {
	if counter == nil {
		counter = NewMemoryCounter()
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		counter: counter,
		log:     log,
	}
}

func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := rl.counter.Incr(ctx, key, rl.window)
	if err != nil {
		return true, err
	}
	return n <= int64(rl.limit), nil
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := rl.Allow(r.Context(), "ratelimit:"+clientIP(r))
		if err != nil && rl.log != nil {
			rl.log.Warn("rate limit: counter unavailable", slog.String("error", err.Error()))
		}
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			transport.WriteError(w, http.StatusTooManyRequests, rateLimitMessage, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MemoryCounter keeps windows in process memory. Expired buckets are swept
// at most once per window.
type MemoryCounter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	nextSweep time.Time
	now       func() time.Time
}

type bucket struct {
	count int64
	reset time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.After(m.nextSweep) {
		for k, b := range m.buckets {
			if now.After(b.reset) {
				delete(m.buckets, k)
			}
		}
		m.nextSweep = now.Add(window)
	}

	b, ok := m.buckets[key]
	if !ok || now.After(b.reset) {
		m.buckets[key] = &bucket{count: 1, reset: now.Add(window)}
		return 1, nil
	}

	b.count++
	return b.count, nil
}

// RedisCounter keeps windows in Redis so the quota is shared by every instance.
type RedisCounter struct {
	client redis.Cmdable
}

func NewRedisCounter(client redis.Cmdable) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.client.PExpire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}
