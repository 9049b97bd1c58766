package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/directory-admin/internal/notify"
)

// Toasts gives each request its own notification collector. Handlers read it
// back with notify.Toasts(c.Request.Context()).
func Toasts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _ := notify.WithCollector(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
