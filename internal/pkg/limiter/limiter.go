/*
Package limiter throttles gateway endpoints that mint tokens.

Each caller key (the client IP by default) gets its own token bucket (rate.Limiter).
A background loop drops buckets that have refilled completely so idle callers do not
accumulate in memory.
*/
package limiter

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"anychat/internal/pkg/errs"
	"anychat/internal/pkg/logx"
	"anychat/internal/pkg/resp"
)

// CleanupInterval is how often idle buckets are dropped.
const CleanupInterval = 3 * time.Minute

// KeyFunc extracts the throttling key from a request.
type KeyFunc func(r *http.Request) string

// RemoteIP keys requests by the host part of RemoteAddr (set by chi's RealIP upstream).
func RemoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if ip == "" {
		return "unknown_ip"
	}
	return ip
}

// KeyedLimiter holds one rate.Limiter per key.
type KeyedLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter
	r      rate.Limit
	b      int
	key    KeyFunc
}

// New returns a KeyedLimiter allowing r events per second with burst b per key.
// A nil key func keys by RemoteIP.
func New(r rate.Limit, b int, key KeyFunc) *KeyedLimiter {
	if key == nil {
		key = RemoteIP
	}
	return &KeyedLimiter{
		limits: make(map[string]*rate.Limiter),
		r:      r,
		b:      b,
		key:    key,
	}
}

// Get returns the limiter for key, creating it on first use.
func (l *KeyedLimiter) Get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limits[key]
	if !ok {
		limiter = rate.NewLimiter(l.r, l.b)
		l.limits[key] = limiter
	}
	return limiter
}

// Len reports the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limits)
}

// Sweep drops every bucket that is full at now and returns how many were removed.
func (l *KeyedLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, limiter := range l.limits {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(l.limits, key)
			removed++
		}
	}
	return removed
}

// Run sweeps idle buckets every CleanupInterval until ctx is cancelled.
func (l *KeyedLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed := l.Sweep(now)
			logx.Debug("Rate limiter sweep finished", "removed", removed, "active", l.Len())
		}
	}
}

// Middleware answers 429 once a key exhausts its bucket.
func (l *KeyedLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Get(l.key(r)).Allow() {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}
		next.ServeHTTP(w, r)
	})
}
