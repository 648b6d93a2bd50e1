package middleware

import (
	"net/http"
	"strings"

	"github.com/bpadilla17/radladder-game/internal/dto"
	"github.com/bpadilla17/radladder-game/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	ContextSessionID  = "session_id"
	ContextPlayerName = "player_name"
)

// SessionAuth accepts a session token from the Authorization header or, for
// WebSocket upgrades, the token query parameter. Routes with an :id param
// must name the token's own session.
func SessionAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   http.StatusText(http.StatusUnauthorized),
				Message: "Session token is required",
			})
			c.Abort()
			return
		}

		claims, err := jwt.ValidateSessionToken(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   http.StatusText(http.StatusUnauthorized),
				Message: "Invalid session token",
			})
			c.Abort()
			return
		}

		if id := c.Param("id"); id != "" && id != claims.SessionID {
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   http.StatusText(http.StatusForbidden),
				Message: "Token does not belong to this game",
			})
			c.Abort()
			return
		}

		c.Set(ContextSessionID, claims.SessionID)
		c.Set(ContextPlayerName, claims.PlayerName)

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if token := c.Query("token"); token != "" {
		return token, true
	}
	return "", false
}
