// Package handler holds what the console route handlers share: response
// helpers, the delete confirmation port and draft binding.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/directory-admin/internal/middleware"
	"github.com/jwalitptl/directory-admin/internal/notify"
	"github.com/jwalitptl/directory-admin/internal/store"
	apperrors "github.com/jwalitptl/directory-admin/pkg/errors"
	"github.com/jwalitptl/directory-admin/pkg/httputil"
)

// Success answers with data and the toasts raised so far.
func Success(c *gin.Context, status int, data interface{}) {
	httputil.RespondWithStatus(c, status, data, notify.Toasts(c.Request.Context()))
}

// Fail answers with err and the toasts raised so far.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, store.ErrDeclined) {
		err = &apperrors.AppError{
			Code:    apperrors.ErrBadRequest,
			Message: "Deletion not confirmed. Repeat the request with " + middleware.HeaderXConfirm + ": true.",
			Status:  http.StatusPreconditionRequired,
			Err:     err,
		}
	}
	httputil.RespondWithError(c, err, c.GetString(middleware.ContextRequestID), notify.Toasts(c.Request.Context()))
}

// HeaderConfirmer approves a deletion when the request carries X-Confirm: true.
func HeaderConfirmer(c *gin.Context) store.Confirmer {
	ok := c.GetHeader(middleware.HeaderXConfirm) == "true"
	return store.ConfirmFunc(func(context.Context, string) (bool, error) {
		return ok, nil
	})
}
