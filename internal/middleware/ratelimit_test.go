package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/response"
)

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	steps := []struct {
		name          string
		advance       time.Duration
		key           string
		wantAllowed   bool
		wantRemaining int
	}{
		{"first request opens window", 0, "10.0.0.1", true, 1},
		{"second request at limit", 10 * time.Second, "10.0.0.1", true, 0},
		{"third request denied", 10 * time.Second, "10.0.0.1", false, 0},
		{"other address has own budget", 0, "10.0.0.2", true, 1},
		{"window edge still counts", 40 * time.Second, "10.0.0.1", false, 0},
		{"elapsed window restarts", time.Second, "10.0.0.1", true, 1},
	}

	for _, st := range steps {
		now = now.Add(st.advance)
		d, err := l.Allow(ctx, st.key)
		if err != nil {
			t.Fatalf("%s: Allow: %v", st.name, err)
		}
		if d.Allowed != st.wantAllowed || d.Remaining != st.wantRemaining {
			t.Fatalf("%s: decision = %+v, want allowed=%v remaining=%d", st.name, d, st.wantAllowed, st.wantRemaining)
		}
		if d.Limit != 2 {
			t.Fatalf("%s: limit = %d, want 2", st.name, d.Limit)
		}
	}
}

func TestMemoryLimiterSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(5, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	now = now.Add(30 * time.Second)
	_, _ = l.Allow(ctx, "b")

	now = now.Add(31 * time.Second)
	if n := l.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	now = now.Add(time.Minute)
	if n := l.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewRedisLimiter(rdb, 2, time.Minute)
	ctx := context.Background()

	want := []bool{true, true, false, false}
	for i, w := range want {
		d, err := l.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("request %d: Allow: %v", i+1, err)
		}
		if d.Allowed != w {
			t.Fatalf("request %d: allowed = %v, want %v", i+1, d.Allowed, w)
		}
	}

	key := config.CacheKey.RateLimitKey("10.0.0.1")
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("window ttl = %v", ttl)
	}

	mr.FastForward(time.Minute)
	d, err := l.Allow(ctx, "10.0.0.1")
	if err != nil || !d.Allowed || d.Remaining != 1 {
		t.Fatalf("after window: %+v, err %v", d, err)
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("limiter down")
}

func TestRateLimitMiddleware(t *testing.T) {
	newRouter := func(l Limiter) *gin.Engine {
		r := gin.New()
		r.GET("/ping", RateLimit(l, zerolog.Nop()), func(c *gin.Context) { c.Status(http.StatusOK) })
		return r
	}
	get := func(r *gin.Engine) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("over budget gets 429", func(t *testing.T) {
		r := newRouter(NewMemoryLimiter(1, time.Minute))

		if w := get(r); w.Code != http.StatusOK {
			t.Fatalf("first status = %d", w.Code)
		}
		w := get(r)
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("second status = %d, want 429", w.Code)
		}
		if got := errorCode(t, w); got != response.ErrRateLimitExceeded {
			t.Fatalf("code = %q", got)
		}
		retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
		if err != nil || retry < 1 || retry > 60 {
			t.Fatalf("Retry-After = %q", w.Header().Get("Retry-After"))
		}
		if w.Header().Get("X-RateLimit-Limit") != "1" || w.Header().Get("X-RateLimit-Remaining") != "0" {
			t.Fatalf("rate headers = %v", w.Header())
		}
	})

	t.Run("limiter failure lets request through", func(t *testing.T) {
		if w := get(newRouter(brokenLimiter{})); w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})
}
