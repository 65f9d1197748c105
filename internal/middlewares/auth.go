package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwtmw "github.com/Gopher0727/Concord/middleware/jwt"
)

// AuthMiddleware resolves the bearer token into a user identity and stores it
// on the request context. Browser websocket clients cannot set headers, so a
// ?token= query parameter is accepted as a fallback.
func AuthMiddleware(tokens *jwtmw.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		} else {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := tokens.ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.UserName)
		c.Next()
	}
}
