package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/mobile-garage/internal/apperr"
)

// RateLimiter provides sliding-window rate limiting per client IP.
type RateLimiter struct {
	requests map[string][]int64 // IP -> timestamps
	mu       sync.Mutex
	now      func() time.Time
	lastGC   int64
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		requests: make(map[string][]int64),
		now:      time.Now,
	}
}

// Limit allows at most maxRequests per client IP within window.
func (m *RateLimiter) Limit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxRequests <= 0 {
			c.Next()
			return
		}
		clientIP := c.ClientIP()

		// Clean old requests outside the window
		now := m.now().UnixNano()
		windowStart := now - window.Nanoseconds()

		m.mu.Lock()
		if now-m.lastGC > window.Nanoseconds() {
			m.sweep(windowStart)
			m.lastGC = now
		}
		valid := m.requests[clientIP][:0]
		for _, ts := range m.requests[clientIP] {
			if ts > windowStart {
				valid = append(valid, ts)
			}
		}

		// Check if rate limit exceeded
		if len(valid) >= maxRequests {
			m.requests[clientIP] = valid
			m.mu.Unlock()
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, (&apperr.Error{Message: "Rate limit exceeded"}).Body())
			return
		}

		m.requests[clientIP] = append(valid, now)
		m.mu.Unlock()

		c.Next()
	}
}

// sweep drops clients with no request newer than windowStart. Callers hold mu.
func (m *RateLimiter) sweep(windowStart int64) {
	for ip, stamps := range m.requests {
		if len(stamps) == 0 || stamps[len(stamps)-1] <= windowStart {
			delete(m.requests, ip)
		}
	}
}
