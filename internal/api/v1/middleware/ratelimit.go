package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/deepgram/chatdesk/internal/config"
	"github.com/deepgram/chatdesk/pkg/httpext"
	"github.com/deepgram/chatdesk/pkg/logger"
	"github.com/deepgram/chatdesk/pkg/ratelimit"
)

// RateLimitExceeded is the error text sent to limited clients.
const RateLimitExceeded = "Rate limit exceeded"

// Limiter applies one configured rate limit (see config.GetRateLimitConfig) per client IP. One
// Limiter can guard several routes so they share a budget.
type Limiter struct {
	key     string
	cfg     config.RateLimitConfig
	limiter *ratelimit.Limiter
}

func NewLimiter(limitKey string) *Limiter {
	cfg := config.GetRateLimitConfig(limitKey)
	return &Limiter{
		key:     limitKey,
		cfg:     cfg,
		limiter: ratelimit.NewLimiter(cfg.Window, cfg.MaxHits),
	}
}

// Allow records a hit for the client of r. When the hit is refused it also returns how long
// the client should wait. A disabled limit allows everything.
func (rl *Limiter) Allow(r *http.Request) (bool, time.Duration) {
	if !rl.cfg.Enabled {
		return true, 0
	}

	ip := ClientIP(r)
	allowed, retryAfter := rl.limiter.Reserve(ip)
	if !allowed {
		l := logger.For(logger.MIDDLEWARE)
		l.Warn().
			Str("client_ip", ip).
			Str("limit_key", rl.key).
			Dur("retry_after", retryAfter).
			Msg("Rate limit exceeded")
	}
	return allowed, retryAfter
}

func (rl *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, retryAfter := rl.Allow(r)
		if !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			httpext.JsonError(w, RateLimitExceeded, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RateLimit(limitKey string) func(http.Handler) http.Handler {
	return NewLimiter(limitKey).Middleware
}

// ClientIP identifies the client by its remote address. The first X-Forwarded-For hop is used
// instead only when TRUST_PROXY is set, since clients can write that header themselves.
func ClientIP(r *http.Request) string {
	if config.GetTrustProxy() {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
