package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestIPRateLimiter_Allow_Per_IP(t *testing.T) {
	req := require.New(t)
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2)
	t.Cleanup(limiter.Stop)

	req.True(limiter.Allow("10.0.0.1"))
	req.True(limiter.Allow("10.0.0.1"))
	req.False(limiter.Allow("10.0.0.1"))

	req.True(limiter.Allow("10.0.0.2"))
	req.Equal(2, limiter.Len())
}

func TestIPRateLimiter_EvictIdle(t *testing.T) {
	req := require.New(t)
	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	t.Cleanup(limiter.Stop)

	limiter.Allow("10.0.0.1")
	limiter.GetLimiter("10.0.0.2")

	// The untouched bucket is full now; the used one refills within a few seconds
	req.Equal(1, limiter.evictIdle(time.Now()))
	req.Equal(1, limiter.Len())

	req.Equal(1, limiter.evictIdle(time.Now().Add(10*time.Second)))
	req.Zero(limiter.Len())
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	req := require.New(t)
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 1)
	t.Cleanup(limiter.Stop)

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func() int {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.RemoteAddr = "192.0.2.7:41000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	req.Equal(http.StatusNoContent, serve())
	req.Equal(http.StatusTooManyRequests, serve())
}

func TestClientIP(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[2001:db8::1]:443"
	req.Equal("2001:db8::1", ClientIP(r))

	r.RemoteAddr = "no-port"
	req.Equal("no-port", ClientIP(r))

	r.RemoteAddr = ""
	req.Equal("unknown_ip", ClientIP(r))
}
