package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/paukdv/web-14/pkg/clientip"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// Per-IP in-process limiter for the credential endpoints. Independent of
// the Redis limiter: login brute force is throttled even when Redis is
// down.

const (
	loginRateLimitRPS   = 1
	loginRateLimitBurst = 5
	loginLimiterTTL     = 30 * time.Minute
	loginCleanupEvery   = 5 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

type loginLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
}

func newLoginLimiter() *loginLimiter {
	l := &loginLimiter{entries: make(map[string]*limiterEntry)}
	go l.cleanupLoop()
	return l
}

func (l *loginLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(loginRateLimitRPS, loginRateLimitBurst)}
		l.entries[ip] = entry
	}
	entry.lastUse = time.Now()
	return entry.limiter
}

func (l *loginLimiter) cleanupLoop() {
	for range time.Tick(loginCleanupEvery) {
		l.mu.Lock()
		for ip, entry := range l.entries {
			if time.Since(entry.lastUse) > loginLimiterTTL {
				delete(l.entries, ip)
			}
		}
		l.mu.Unlock()
	}
}

// LoginRateLimit throttles per-IP with a token bucket (1/s, burst 5).
func LoginRateLimit() func(http.Handler) http.Handler {
	limiter := newLoginLimiter()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.get(clientip.FromRequest(r)).Allow() {
				writeDetail(w, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
