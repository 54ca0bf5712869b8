package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/hlog"
)

// Counter counts hits for key inside the current fixed window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter shares counts across instances. Each window gets its own key
// which Redis expires once the window has passed.
type RedisCounter struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, now: time.Now}
}

func (c *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	bucket := c.now().UnixNano() / int64(window)
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

type visitor struct {
	count       int64
	windowStart time.Time
}

// MemoryCounter is the single-instance fallback used when no Redis is configured.
type MemoryCounter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewMemoryCounter(cleanupEvery time.Duration) *MemoryCounter {
	c := &MemoryCounter{
		visitors: make(map[string]*visitor),
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	if cleanupEvery > 0 {
		go c.cleanup(cleanupEvery)
	}

	return c
}

func (c *MemoryCounter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := c.now()
			c.mu.Lock()
			for key, v := range c.visitors {
				if now.Sub(v.windowStart) > every {
					delete(c.visitors, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *MemoryCounter) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	v, exists := c.visitors[key]
	if !exists || now.Sub(v.windowStart) >= window {
		c.visitors[key] = &visitor{count: 1, windowStart: now}
		return 1, nil
	}

	v.count++
	return v.count, nil
}

type RateLimiter struct {
	counter Counter
	name    string
	limit   int
	window  time.Duration
}

// NewRateLimiter limits each client IP to limit requests per window. Limiters
// with different names keep separate counts.
func NewRateLimiter(counter Counter, name string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		name:    name,
		limit:   limit,
		window:  window,
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		count, err := rl.counter.Incr(r.Context(), rl.name+":"+clientIP(r), rl.window)
		if err != nil {
			// Fail open: a counter outage must not lock users out.
			hlog.FromRequest(r).Warn().Err(err).Str("limiter", rl.name).Msg("rate limit counter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(rl.limit) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}

		next.ServeHTTP(w, r)
	})
}
