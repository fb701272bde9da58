package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"publishing-backend/internal/shared/apperr"
)

var ErrRateLimited = apperr.TooManyRequests("RATE_LIMIT_EXCEEDED", "Rate limit exceeded")

// KeyFunc extracts a key from the request for rate limiting
type KeyFunc func(*gin.Context) string

// Skipper determines if a request should skip rate limiting
type Skipper func(*gin.Context) bool

type RateLimiterOption func(*RateLimiter)

func WithSkipper(skipper Skipper) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.skipper = skipper
	}
}

// WithKeyFunc đổi key mặc định (client IP)
func WithKeyFunc(keyFunc KeyFunc) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.extractKey = keyFunc
	}
}

// RateLimiter - token bucket per key (mặc định theo client IP)
type RateLimiter struct {
	extractKey KeyFunc
	limiters   map[string]*rate.Limiter
	mu         sync.Mutex
	rate       rate.Limit
	burst      int
	skipper    Skipper
}

func NewRateLimiter(limit rate.Limit, burst int, options ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		extractKey: GetClientIP,
		limiters:   make(map[string]*rate.Limiter),
		rate:       limit,
		burst:      burst,
		skipper:    func(*gin.Context) bool { return false },
	}

	for _, opt := range options {
		opt(rl)
	}
	return rl
}

// StartCleanup định kỳ xóa limiter đã đầy token, dừng khi done đóng
func (rl *RateLimiter) StartCleanup(interval time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, limiter := range rl.limiters {
		if limiter.Tokens() >= float64(rl.burst) {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	return limiter
}

// Limit implements the rate limiting middleware
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.skipper(c) {
			c.Next()
			return
		}

		key := rl.extractKey(c)
		if !rl.getLimiter(key).Allow() {
			log.Warn().
				Str("key", key).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("rate limit exceeded")
			abortWithError(c, ErrRateLimited)
			return
		}

		c.Next()
	}
}
