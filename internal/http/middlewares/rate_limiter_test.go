package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(ctx, "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("request %d should be allowed: ok=%v err=%v", i+1, ok, err)
		}
	}

	ok, retryAfter, err := l.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatalf("fourth request in window should be blocked")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Fatalf("retryAfter out of range: %v", retryAfter)
	}

	// a different key has its own window
	if ok, _, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Fatalf("unrelated key should be allowed")
	}
}

func TestRateLimitMiddleware_Blocks(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)

	r := gin.New()
	r.POST("/login", RateLimit(l, KeyByIP), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w1.Code != http.StatusOK {
		t.Fatalf("first request: got %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", w2.Code)
	}
	if w2.Header().Get("Retry-After") == "" {
		t.Fatalf("429 without Retry-After header")
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("backend down")
}

// An unreachable limiter backend must not lock the login out.
func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(failingLimiter{}, KeyByIP), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("got %d, want 200 when limiter errors", w.Code)
	}
}
