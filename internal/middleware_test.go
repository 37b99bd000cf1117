package internal

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestIPRateLimiterReusesLimiter(t *testing.T) {
	l := newIPRateLimiter(1, 1, time.Minute)

	first := l.limiter("10.0.0.1")
	assert.Same(t, first, l.limiter("10.0.0.1"))
	assert.NotSame(t, first, l.limiter("10.0.0.2"))
}

func TestIPRateLimiterEvictsIdleClients(t *testing.T) {
	l := newIPRateLimiter(1, 1, 200*time.Millisecond)

	for i := 0; i < 100; i++ {
		l.limiter(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	require.Equal(t, 100, l.limiters.ItemCount())

	assert.Eventually(t, func() bool { return l.limiters.ItemCount() == 0 },
		2*time.Second, 20*time.Millisecond)
}

func TestRateLimitSpoofedForwardedForIsBounded(t *testing.T) {
	l := newIPRateLimiter(1, 1, 200*time.Millisecond)
	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(rateLimit(l))
	router.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("GET", "/dashboard", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.Equal(t, 50, l.limiters.ItemCount())

	assert.Eventually(t, func() bool { return l.limiters.ItemCount() == 0 },
		2*time.Second, 20*time.Millisecond)
}

func TestLimiterIdleTTL(t *testing.T) {
	assert.Equal(t, 3*time.Minute, limiterIdleTTL(10, 20))
	assert.Equal(t, 400*time.Second, limiterIdleTTL(rate.Limit(0.5), 200))
	assert.Equal(t, 24*time.Hour, limiterIdleTTL(rate.Limit(1e-9), 100))
	assert.Equal(t, 3*time.Minute, limiterIdleTTL(0, 5))
}
