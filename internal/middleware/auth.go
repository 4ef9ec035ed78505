package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/luckguide/luckguide-golang/internal/auth"
)

// AuthMiddleware validates the Bearer token and stores the user ID in the
// gin context for downstream handlers.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			c.Abort()
			return
		}

		userID, err := auth.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// UserID reads the authenticated user ID set by AuthMiddleware. Returns 0
// for anonymous requests, which downstream code treats as "no credits".
func UserID(c *gin.Context) int64 {
	raw, exists := c.Get("userID")
	if !exists {
		return 0
	}
	id, ok := raw.(int64)
	if !ok {
		return 0
	}
	return id
}
