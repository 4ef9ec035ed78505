package middleware

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware must run after AuthMiddleware. It loads the user's role
// and rejects anyone who is not an admin.
func AdminMiddleware(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
			c.Abort()
			return
		}

		var role string
		err := db.QueryRowContext(c.Request.Context(),
			"SELECT role FROM users WHERE id = $1", userID).Scan(&role)
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusForbidden, gin.H{"error": "Invalid user"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			}
			c.Abort()
			return
		}

		if role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}
