package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"courtops/internal/metrics"
)

// RequestLogger logs every request, counts it, and recovers panics into
// a 500 response instead of killing the connection.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error().
					Interface("panic", recovered).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("request panic")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   gin.H{"code": "INTERNAL_SERVER_ERROR", "message": "internal server error"},
				})
			}
		}()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.IncHTTP(c.Request.Method, route)

		event := logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", route).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("club_id", c.GetString("club_id")).
			Msg("request")
	}
}
