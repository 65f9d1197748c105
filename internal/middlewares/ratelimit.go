package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Concord/internal/ratelimit"
)

// RateLimitMiddleware bounds how often an authenticated user may hit the
// wrapped routes. Applied to message sends only; reads are not limited.
func RateLimitMiddleware(limiter ratelimit.Limiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}

		ok, err := limiter.Allow(c.Request.Context(), "user:"+userID, limit, window)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many messages, slow down"})
			return
		}
		c.Next()
	}
}
