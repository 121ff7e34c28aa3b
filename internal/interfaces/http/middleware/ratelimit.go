package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ptuchik/billing/internal/infrastructure/ratelimit"
	"github.com/ptuchik/billing/internal/shared/logger"
	"github.com/ptuchik/billing/internal/shared/utils"
)

// Limiter is satisfied by ratelimit.RedisRateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string, limits ratelimit.Limits) (bool, error)
}

// ChargeRateLimit caps charge-producing calls per user. A nil limiter
// disables the check.
func ChargeRateLimit(limiter Limiter, limits ratelimit.Limits, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ip:%s", c.ClientIP())
		if userID, ok := CurrentUserID(c); ok {
			key = fmt.Sprintf("user:%d", userID)
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, limits)
		if err != nil {
			// Redis outage must not block payments.
			log.Warnw("rate limiter unavailable", "error", err, "key", key)
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
