package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paukdv/web-14/pkg/clientip"
)

const (
	rateLimitKeyPrefix = "ratelimit:"
	blockedIPKeyPrefix = "blocked_ip:"
	// blockedIPDuration is how long an IP stays blocked after exhausting
	// the window several times over.
	blockedIPDuration = 1 * time.Hour
	// blockMultiplier: exceeding maxRequests * blockMultiplier within one
	// window escalates from 429s to a temporary block.
	blockMultiplier = 3
)

// RateLimit returns a per-client fixed-window limiter backed by Redis.
// Redis failures fail open: a broken limiter must not take the API down.
func RateLimit(client *redis.Client, maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientip.FromRequest(r)

			blocked, err := client.Exists(ctx, blockedIPKeyPrefix+ip).Result()
			if err == nil && blocked > 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"detail":"Your IP has been temporarily blocked due to excessive requests. Please try again later."}`))
				return
			}

			key := rateLimitKeyPrefix + ip
			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(ctx, key, window)
			}

			if count > int64(maxRequests) {
				if count > int64(maxRequests*blockMultiplier) {
					client.Set(ctx, blockedIPKeyPrefix+ip, "1", blockedIPDuration)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(fmt.Sprintf(`{"detail":"Rate limit exceeded. Please try again later.","retry_after":%d}`, int(window.Seconds()))))
				return
			}

			remaining := int64(maxRequests) - count
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(window).Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}
