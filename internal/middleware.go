package internal

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// requestLogger logs one line per request
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// ipRateLimiter stores a rate limiter for each client IP address. Idle
// entries expire, so rotating forwarded addresses cannot grow it forever.
type ipRateLimiter struct {
	limiters *cache.Cache
	mu       sync.Mutex
	r        rate.Limit
	b        int
}

func newIPRateLimiter(r rate.Limit, b int, idle time.Duration) *ipRateLimiter {
	return &ipRateLimiter{
		limiters: cache.New(idle, idle),
		r:        r,
		b:        b,
	}
}

// limiterIdleTTL keeps a limiter at least until its bucket would be full
// again, so eviction never hands a throttled client extra tokens.
func limiterIdleTTL(r rate.Limit, b int) time.Duration {
	idle := 3 * time.Minute
	if r <= 0 {
		return idle
	}
	refill := float64(b) / float64(r) * float64(time.Second)
	if refill > float64(24*time.Hour) {
		return 24 * time.Hour
	}
	if d := time.Duration(refill); d > idle {
		return d
	}
	return idle
}

func (i *ipRateLimiter) limiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	var limiter *rate.Limiter
	if v, found := i.limiters.Get(ip); found {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(i.r, i.b)
	}
	// refresh the idle deadline on every request
	i.limiters.Set(ip, limiter, cache.DefaultExpiration)
	return limiter
}

// rateLimit rejects clients exceeding their limiter with 429
func rateLimit(limiters *ipRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiters.limiter(clientIP(req)).Allow() {
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// clientIP strips the port from RemoteAddr, which RealIP may have rewritten
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
