package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/directory-admin/pkg/logger"
)

// Logger returns a middleware that logs HTTP requests. Bodies are never
// logged: forms carry passwords and images.
func Logger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		ev := log.ZL.Info()
		msg := "Request processed"
		switch {
		case statusCode >= 500:
			ev, msg = log.ZL.Error(), "Server error"
		case statusCode >= 400:
			ev, msg = log.ZL.Warn(), "Client error"
		}

		ev.Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Int("status", statusCode).
			Dur("duration", latency).
			Str("user_agent", c.Request.UserAgent()).
			Msg(msg)
	}
}
