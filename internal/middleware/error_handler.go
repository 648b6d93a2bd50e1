package middleware

import (
	"log"
	"net/http"

	"github.com/bpadilla17/radladder-game/internal/dto"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns panics and errors attached with c.Error into JSON
// bodies. Handlers that already wrote a response are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("Panic recovered on %s %s: %v", c.Request.Method, c.Request.URL.Path, rec)
				if !c.Writer.Written() {
					dto.JsonErrorCode(c, http.StatusInternalServerError, "internal", "Internal error")
				}
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		log.Printf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, last.Err)

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		dto.JsonError(c, status)
	}
}
