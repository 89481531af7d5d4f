package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"proxy-bidding/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":    c.Request.Method,
		"path":      c.FullPath(),
		"status":    c.Writer.Status(),
		"latency":   time.Since(start).String(),
		"client_ip": c.ClientIP(),
	})
}

// maxLimiters bounds the per-client map; past it the map is reset
const maxLimiters = 10000

// ClientRateLimiter hands out one token bucket per client key
type ClientRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewClientRateLimiter allows rps requests per second per client with the given burst
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	return &ClientRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether key may make another request now
func (rl *ClientRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	limiter, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= maxLimiters {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	rl.mu.Unlock()

	return limiter.Allow()
}

var errRateLimited = errors.New("rate limit exceeded")

// RateLimitMiddleware rejects clients that exceed their bucket with 429
func RateLimitMiddleware(rl *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			utils.JSONError(c, http.StatusTooManyRequests, "rate_limited", errRateLimited, "too many requests")
			c.Abort()
			utils.Warn("RateLimitMiddleware: request rejected", map[string]any{"client_ip": c.ClientIP(), "path": c.FullPath()})
			return
		}
		c.Next()
	}
}
