package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/directory-admin/pkg/errors"
	"github.com/jwalitptl/directory-admin/pkg/httputil"
)

// SizeLimitConfig represents size limit configuration
type SizeLimitConfig struct {
	MaxBodySize   int64 // in bytes
	MaxUploadSize int64 // in bytes, multipart bodies
	ErrorMessage  string
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize:   1 << 20,  // 1MB
		MaxUploadSize: 10 << 20, // 10MB
		ErrorMessage:  "Request size exceeds limit",
	}
}

// SizeLimit rejects oversized declared bodies and caps the rest while they
// are read.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		max := config.MaxBodySize
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			max = config.MaxUploadSize
		}
		if max <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > max {
			httputil.RespondWithError(c, &errors.AppError{
				Code:    errors.ErrBadRequest,
				Message: fmt.Sprintf("%s: body size exceeds %d bytes", config.ErrorMessage, max),
				Status:  http.StatusRequestEntityTooLarge,
			}, c.GetString(ContextRequestID), nil)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		c.Next()
	}
}
