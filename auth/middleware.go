package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "user_id"

// Middleware validates the Bearer token on every protected route and injects
// the authenticated user id into the gin context for downstream handlers.
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token is missing"})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := tokens.Validate(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(identityKey, claims.UserID)
		c.Next()
	}
}

// UserID returns the authenticated user id injected by Middleware.
func UserID(c *gin.Context) string {
	return c.GetString(identityKey)
}
