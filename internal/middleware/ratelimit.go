// ratelimit.go implements per-client rate limiting with token buckets from
// golang.org/x/time/rate.
//
// How token bucket works:
// - Each client key gets a bucket holding up to `burst` tokens
// - Each request consumes 1 token
// - Tokens refill at a steady rate
// - If the bucket is empty, the request is rejected with 429 Too Many Requests
//
// This is more forgiving than a fixed window because it smooths out burst
// traffic naturally.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Shimizu-Technology/listing-analyzer-api/internal/models"
)

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(c *gin.Context) string

// ByClientIP charges requests to the client IP.
func ByClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ByUserOrIP charges signed-in requests to the user and anonymous ones to
// the client IP. Run it after OptionalSession or RequireSession.
func ByUserOrIP(c *gin.Context) string {
	if user := GetUser(c); user != nil {
		return "user:" + user.ID
	}
	return ByClientIP(c)
}

// RateLimiter tracks request rates per client key.
type RateLimiter struct {
	// Go Pattern: sync.Mutex guards the map; each *rate.Limiter is
	// already safe for concurrent use on its own.
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// visitor is one client's bucket plus when it was last used.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per key per minute, with bursts
// up to perMinute. Idle keys are forgotten after ten minutes. Call Stop to
// end the cleanup goroutine.
func NewRateLimiter(perMinute int) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		idleTTL:  10 * time.Minute,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	// Start background cleanup goroutine
	go rl.cleanup(time.Minute)

	return rl
}

// Middleware returns Gin middleware that enforces the limit per key.
func (rl *RateLimiter) Middleware(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.get(key(c))

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Rate limit exceeded. Try again later.",
				Code:    http.StatusTooManyRequests,
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Next()
	}
}

// get returns the limiter for key, creating it on first use.
func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
	<-rl.done
}

// cleanup periodically removes idle visitors to prevent memory leaks.
func (rl *RateLimiter) cleanup(every time.Duration) {
	defer close(rl.done)

	// Go Pattern: time.Ticker sends values at regular intervals.
	// Always defer ticker.Stop() to release resources.
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.visitors, key)
		}
	}
}
