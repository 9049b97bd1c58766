package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/directory-admin/internal/notify"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
	// HeaderXConfirm must be "true" on DELETE requests.
	HeaderXConfirm = "X-Confirm"
)

// RequestID adds a unique request ID to each request and to its context, so
// notifications published while serving it carry the same id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if request ID exists in header
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" || len(rid) > 64 {
			rid = uuid.New().String()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Request = c.Request.WithContext(notify.WithRequestID(c.Request.Context(), rid))
		c.Next()
	}
}
