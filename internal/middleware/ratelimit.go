package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/response"
)

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key in fixed windows.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RateLimit rejects requests over the per-address budget with 429.
// It runs before authentication. Limiter errors let the request through.
func RateLimit(l Limiter, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "rate_limiter").Logger()
	return func(c *gin.Context) {
		d, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

		if !d.Allowed {
			retry := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}

		c.Next()
	}
}

// ─── In-process limiter ─────────────────────────────────────────────

// MemoryLimiter keeps one window per key in process memory.
// Counters are not shared between instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter creates a limiter allowing limit requests per period.
func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow implements Limiter. A missing or elapsed window restarts at 1;
// otherwise the request is counted while the count is below the limit.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(l.period)}
		l.windows[key] = w
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - 1, ResetAt: w.resetAt}, nil
	}

	if w.count >= l.limit {
		return Decision{Allowed: false, Limit: l.limit, Remaining: 0, ResetAt: w.resetAt}, nil
	}

	w.count++
	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - w.count, ResetAt: w.resetAt}, nil
}

// Sweep drops elapsed windows.
func (l *MemoryLimiter) Sweep() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// StartSweeper sweeps elapsed windows every interval until ctx is done.
func (l *MemoryLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
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

// ─── Shared limiter ─────────────────────────────────────────────────

// fixedWindowScript increments the counter and starts its window on first use.
var fixedWindowScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('PTTL', KEYS[1])}
`)

// RedisLimiter keeps windows in Redis so every instance shares one budget.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	period time.Duration
}

// NewRedisLimiter creates a shared limiter allowing limit requests per period.
func NewRedisLimiter(rdb *redis.Client, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, period: period}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := fixedWindowScript.Run(ctx, l.rdb,
		[]string{config.CacheKey.RateLimitKey(key)}, l.period.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, err
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = l.period
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}, nil
}
