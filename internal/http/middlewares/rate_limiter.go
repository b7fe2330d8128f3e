package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed-window counter per key.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	clients map[string]*clientBucket
	lastGC  time.Time
}

type clientBucket struct {
	count     int
	windowEnd time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientBucket),
	}
}

// RateLimiterMiddleware enforces the limit for the key keyFn derives.
func (rl *RateLimiter) RateLimiterMiddleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)
		if key == "" {
			key = clientIP(c)
		}

		now := time.Now()

		rl.mu.Lock()
		rl.gcLocked(now)

		b, ok := rl.clients[key]
		if !ok || now.After(b.windowEnd) {
			rl.clients[key] = &clientBucket{
				count:     1,
				windowEnd: now.Add(rl.window),
			}

			rl.mu.Unlock()
			c.Next()
			return
		}

		if b.count >= rl.limit {
			retryAfter := int(b.windowEnd.Sub(now).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}

			rl.mu.Unlock()

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			abortError(c, http.StatusTooManyRequests, "RateLimitExceeded", "Too many requests. Please try again shortly.")
			return
		}

		b.count++
		rl.mu.Unlock()
		c.Next()
	}
}

// gcLocked drops expired buckets at most once per window.
func (rl *RateLimiter) gcLocked(now time.Time) {
	if now.Sub(rl.lastGC) < rl.window {
		return
	}
	rl.lastGC = now

	for k, b := range rl.clients {
		if now.After(b.windowEnd) {
			delete(rl.clients, k)
		}
	}
}

// KeyByIP is for unauthenticated endpoints.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)
	if err == nil && host != "" {
		return host
	}

	return ip
}
