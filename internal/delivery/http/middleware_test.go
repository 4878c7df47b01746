package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newMiddlewareRouter(mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("allows exact origin", func(t *testing.T) {
		router := newMiddlewareRouter(CORSMiddleware([]string{"https://app.example.com"}))

		req, _ := http.NewRequest("GET", "/ping", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("Allow-Origin = %q, want https://app.example.com", got)
		}
	})

	t.Run("allows wildcard prefix", func(t *testing.T) {
		router := newMiddlewareRouter(CORSMiddleware([]string{"http://localhost:*"}))

		req, _ := http.NewRequest("GET", "/ping", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Allow-Origin = %q, want http://localhost:3000", got)
		}
	})

	t.Run("rejects unknown origin", func(t *testing.T) {
		router := newMiddlewareRouter(CORSMiddleware([]string{"https://app.example.com"}))

		req, _ := http.NewRequest("GET", "/ping", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("handles preflight", func(t *testing.T) {
		router := newMiddlewareRouter(CORSMiddleware([]string{"https://app.example.com"}))

		req, _ := http.NewRequest("OPTIONS", "/ping", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", w.Code)
		}
	})
}

func TestIPLimiterPool(t *testing.T) {
	pool := newIPLimiterPool(60, 2)

	a := pool.get("10.0.0.1")
	if got := pool.get("10.0.0.1"); got != a {
		t.Error("same IP must reuse its limiter")
	}
	pool.get("10.0.0.2")
	if pool.size() != 2 {
		t.Fatalf("pool size = %d, want 2", pool.size())
	}

	// A third client hits the cap: the pool resets instead of growing.
	pool.get("10.0.0.3")
	if pool.size() != 1 {
		t.Errorf("pool size after reset = %d, want 1", pool.size())
	}
	if pool.size() > 2 {
		t.Errorf("pool must never exceed its cap, got %d", pool.size())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	// One request per minute with a burst of one: the second request from
	// the same client must be rejected.
	router := newMiddlewareRouter(RateLimitMiddleware(1))

	first := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	router.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	req2, _ := http.NewRequest("GET", "/ping", nil)
	req2.RemoteAddr = "10.0.0.1:12346"
	router.ServeHTTP(second, req2)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", second.Code)
	}

	// A different client is unaffected.
	other := httptest.NewRecorder()
	req3, _ := http.NewRequest("GET", "/ping", nil)
	req3.RemoteAddr = "10.0.0.2:12345"
	router.ServeHTTP(other, req3)
	if other.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", other.Code)
	}
}
