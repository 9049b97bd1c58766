package httputil

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/directory-admin/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	// Toasts are the notifications raised while serving the request.
	Toasts interface{} `json:"toasts,omitempty"`
}

// Error represents API error
type Error struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondWithSuccess sends a 200 response
func RespondWithSuccess(c *gin.Context, data interface{}, toasts interface{}) {
	RespondWithStatus(c, http.StatusOK, data, toasts)
}

// RespondWithStatus sends a success response with status
func RespondWithStatus(c *gin.Context, status int, data interface{}, toasts interface{}) {
	c.JSON(status, Response{
		Success: true,
		Data:    data,
		Toasts:  toasts,
	})
}

// StatusOf maps err to an HTTP status.
func StatusOf(err error) int {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}

// RespondWithError sends an error response. Only AppError messages reach the
// client; anything else is reported as an internal error.
func RespondWithError(c *gin.Context, err error, requestID string, toasts interface{}) {
	status := StatusOf(err)
	message := "Internal server error"

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	}

	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error: &Error{
			Code:      status,
			Message:   message,
			RequestID: requestID,
		},
		Toasts: toasts,
	})
}
