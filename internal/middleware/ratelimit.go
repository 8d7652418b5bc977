package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const maxTrackedCallers = 10000

// RateLimiter keeps a token bucket per caller. Idle callers fall out of the
// LRU instead of being swept by a cleanup goroutine.
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	mu       sync.Mutex
	interval time.Duration
	burst    int
}

// NewRateLimiter allows perMinute requests per caller, bursting up to the
// same amount.
func NewRateLimiter(perMinute int) (*RateLimiter, error) {
	if perMinute <= 0 {
		perMinute = 1
	}
	cache, err := lru.New[string, *rate.Limiter](maxTrackedCallers)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		limiters: cache,
		interval: time.Minute / time.Duration(perMinute),
		burst:    perMinute,
	}, nil
}

// Allow reports whether key may make another request now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	limiter, ok := rl.limiters.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rate.Every(rl.interval), rl.burst)
		rl.limiters.Add(key, limiter)
	}
	rl.mu.Unlock()
	return limiter.Allow()
}

// Middleware limits by resolved identity, falling back to the client IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(rl.interval.Seconds())))
	return func(c *gin.Context) {
		key := CurrentIdentity(c).Key()
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !rl.Allow(key) {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
