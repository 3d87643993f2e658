package httpapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter counts requests per key in fixed windows
type RateLimiter struct {
	counters     map[string]*RateLimitEntry
	mu           sync.Mutex
	maxRequests  int           // Maximum requests per window
	windowPeriod time.Duration // Time window for rate limiting
	now          func() time.Time
}

// RateLimitEntry represents an entry in the rate limit counter
type RateLimitEntry struct {
	Count       int       // Number of requests in current window
	WindowStart time.Time // Start time of current window
}

// NewRateLimiter creates a new rate limiter with the specified configuration
func NewRateLimiter(maxRequests int, windowPeriod time.Duration) *RateLimiter {
	return &RateLimiter{
		counters:     make(map[string]*RateLimitEntry),
		maxRequests:  maxRequests,
		windowPeriod: windowPeriod,
		now:          time.Now,
	}
}

// CheckLimit counts a request for key and reports whether the limit is
// exceeded, the count in the current window and when the window resets
func (r *RateLimiter) CheckLimit(key string) (bool, int, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.counters[key]

	// If no entry exists or window has expired, create new entry
	if !ok || now.Sub(entry.WindowStart) >= r.windowPeriod {
		r.counters[key] = &RateLimitEntry{
			Count:       1,
			WindowStart: now,
		}
		r.evictExpired(now)
		return false, 1, now.Add(r.windowPeriod)
	}

	entry.Count++
	resetAt := entry.WindowStart.Add(r.windowPeriod)
	return entry.Count > r.maxRequests, entry.Count, resetAt
}

// evictExpired drops entries whose window has passed so idle clients do not
// accumulate
func (r *RateLimiter) evictExpired(now time.Time) {
	for key, entry := range r.counters {
		if now.Sub(entry.WindowStart) >= r.windowPeriod {
			delete(r.counters, key)
		}
	}
}

// Middleware rejects clients that exceed the limit with 429
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		exceeded, _, resetAt := r.CheckLimit(c.ClientIP())
		if exceeded {
			retryAfter := int(resetAt.Sub(r.now()).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
