package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/waste3d/codelearn/internal/logging"
)

// Counter is a fixed-window hit counter (redis or in-process).
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type RateLimiter struct {
	counter Counter
	log     logging.Logger
}

func NewRateLimiter(counter Counter, log logging.Logger) *RateLimiter {
	return &RateLimiter{counter: counter, log: log}
}

// Limit allows limit requests per client IP per window. If the counter is
// unavailable the request is let through.
func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, c.ClientIP())

		count, ttl, err := rl.counter.Hit(c, key, window)
		if err != nil {
			rl.log.Warn(c, "rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		if count > int64(limit) {
			retry := int(math.Ceil(ttl.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests",
				"retry_after": retry,
			})
			return
		}
		c.Next()
	}
}
