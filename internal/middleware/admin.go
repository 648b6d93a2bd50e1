package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/bpadilla17/radladder-game/internal/dto"

	"github.com/gin-gonic/gin"
)

const AdminKeyHeader = "X-Admin-Key"

// AdminKey guards the question admin API. An empty key disables it.
func AdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			dto.JsonError(c, http.StatusServiceUnavailable, "Admin API is disabled")
			c.Abort()
			return
		}

		given := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			dto.JsonError(c, http.StatusUnauthorized, "Invalid admin key")
			c.Abort()
			return
		}

		c.Next()
	}
}
