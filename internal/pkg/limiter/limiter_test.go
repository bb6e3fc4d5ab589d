package limiter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"anychat/internal/pkg/limiter"
)

func TestMiddlewareThrottlesPerKey(t *testing.T) {
	l := limiter.New(rate.Every(time.Hour), 2, limiter.RemoteIP)
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/rooms/r1/grants", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"))
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2:1000"))
	assert.Equal(t, 2, l.Len())
}

func TestSweepDropsFullBuckets(t *testing.T) {
	l := limiter.New(rate.Limit(1), 1, nil)
	now := time.Now()

	assert.True(t, l.Get("busy").AllowN(now, 1))
	l.Get("idle")

	assert.Equal(t, 1, l.Sweep(now))
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 1, l.Sweep(now.Add(2*time.Second)))
	assert.Equal(t, 0, l.Len())
}

func TestRemoteIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", limiter.RemoteIP(req))

	req.RemoteAddr = "192.0.2.9"
	assert.Equal(t, "192.0.2.9", limiter.RemoteIP(req))

	req.RemoteAddr = ""
	assert.Equal(t, "unknown_ip", limiter.RemoteIP(req))
}
