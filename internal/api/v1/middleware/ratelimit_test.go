package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimit(t *testing.T) {
	t.Setenv("RATELIMIT_ENABLED", "true")
	t.Setenv("RATELIMIT_LOGIN", "2")

	handler := RateLimit("login")(okHandler)

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	limited := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Rate limit exceeded"}`, limited.Body.String())

	// other clients have their own budget
	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestRateLimitDisabled(t *testing.T) {
	t.Setenv("RATELIMIT_ENABLED", "false")
	t.Setenv("RATELIMIT_LOGIN", "1")

	handler := RateLimit("login")(okHandler)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	t.Setenv("RATELIMIT_ENABLED", "true")
	t.Setenv("RATELIMIT_LOGIN", "2")
	t.Setenv("TRUST_PROXY", "false")

	handler := RateLimit("login")(okHandler)

	allowed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 2, allowed)
}

func TestLimiterSharedAcrossRoutes(t *testing.T) {
	t.Setenv("RATELIMIT_ENABLED", "true")
	t.Setenv("RATELIMIT_CHAT", "1")

	limiter := NewLimiter("chat")
	handler := limiter.Middleware(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// the budget spent over HTTP is gone for other callers of the same limiter
	allowed, retryAfter := limiter.Allow(httptest.NewRequest(http.MethodGet, "/api/chat/ws", nil))
	assert.False(t, allowed)
	assert.Positive(t, retryAfter)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote address", "false", "192.0.2.1:1234", "", "192.0.2.1"},
		{"forwarded ignored without trusted proxy", "false", "192.0.2.1:1234", "203.0.113.7", "192.0.2.1"},
		{"forwarded single", "true", "192.0.2.1:1234", "203.0.113.7", "203.0.113.7"},
		{"forwarded chain", "true", "192.0.2.1:1234", "203.0.113.7, 10.0.0.1", "203.0.113.7"},
		{"trusted proxy without header", "true", "192.0.2.1:1234", "", "192.0.2.1"},
		{"no port", "false", "192.0.2.1", "", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TRUST_PROXY", tt.trustProxy)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
