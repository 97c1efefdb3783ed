package middlewares

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-pos/utils"
	"golang.org/x/time/rate"
)

var errTooManyRequests = errors.New("too many requests, please wait a moment")

// RateLimiter is a per-IP sliding window.
type RateLimiter struct {
	rate     int
	interval time.Duration
	ips      map[string][]time.Time
	mu       sync.Mutex
}

func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		interval: interval,
		ips:      make(map[string][]time.Time),
	}
}

// NewStrictRateLimiter shares one token bucket across every request of the
// route group it guards, e.g. cash movements.
func NewStrictRateLimiter(every time.Duration, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Every(every), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			utils.RespondError(c, http.StatusTooManyRequests, errTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.interval)
	valid := rl.ips[ip][:0]
	for _, t := range rl.ips[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) >= rl.rate {
		rl.ips[ip] = valid
		return false
	}
	rl.ips[ip] = append(valid, now)
	return true
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), time.Now()) {
			utils.RespondError(c, http.StatusTooManyRequests, errTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
