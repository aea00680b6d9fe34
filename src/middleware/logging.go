package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/metrology-license-registry/src/logging"
	"github.com/rs/zerolog"
)

// LoggingMiddleware writes one access log line per request through the
// request-scoped logger. Requests with an admin session also log the username.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		logger := logging.FromContext(c.Request.Context())

		var event *zerolog.Event
		msg := "request"
		switch {
		case status >= 500:
			event, msg = logger.Error(), "server error"
		case status >= 400:
			event, msg = logger.Warn(), "client error"
		default:
			event = logger.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Int("bytes", c.Writer.Size()).
			Str("client_ip", c.ClientIP())

		if query != "" {
			event = event.Str("query", query)
		}
		if session, ok := CurrentSession(c); ok {
			event = event.Str("admin", session.Username)
		}
		if len(c.Errors) > 0 {
			event = event.Str("error", c.Errors.String())
		}
		event.Msg(msg)
	}
}
