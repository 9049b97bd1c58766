package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/directory-admin/internal/notify"
	"github.com/jwalitptl/directory-admin/pkg/httputil"
	"github.com/jwalitptl/directory-admin/pkg/logger"
)

// ErrorHandler renders the last error a handler attached with c.Error,
// together with the toasts collected for the request.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		c.Next()

		// Only handle errors if they exist
		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.ZL.Debug().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, c.Errors.Last().Err, requestID, notify.Toasts(c.Request.Context()))
	}
}
