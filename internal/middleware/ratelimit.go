package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"duetgen/internal/metrics"
	"duetgen/pkg/logging/logging"
)

const (
	limiterTableSize = 1000
	limiterIdleTTL   = 5 * time.Minute
)

// limiterTable holds one token bucket per client. Every request refreshes
// the client's entry, so only clients idle for limiterIdleTTL are dropped.
type limiterTable struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newLimiterTable(perMinute, burst int, idle time.Duration) *limiterTable {
	if burst <= 0 {
		burst = max(perMinute/10, 1)
	}
	return &limiterTable{
		limiters: expirable.NewLRU[string, *rate.Limiter](limiterTableSize, nil, idle),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

func (t *limiterTable) allow(key string) bool {
	return t.limiter(key).Allow()
}

func (t *limiterTable) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	limiter, ok := t.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(t.rate, t.burst)
	}
	// Add resets the entry's expiry.
	t.limiters.Add(key, limiter)
	return limiter
}

// RateLimit allows perMinute requests per client IP with the given burst
// (perMinute/10 when burst <= 0) and answers 429 past it. perMinute <= 0
// disables limiting.
func RateLimit(perMinute, burst int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	table := newLimiterTable(perMinute, burst, limiterIdleTTL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !table.allow(ip) {
				metrics.RateLimitedTotal.Inc()
				logging.L(r.Context()).Warn("rate limit exceeded", zap.String("client_ip", ip))

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"errorCode":"rate_limited","message":"too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers X-Forwarded-For, then X-Real-IP, then RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
