// Package treatment serves the treatment edit draft.
package treatment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/directory-admin/internal/directory"
	"github.com/jwalitptl/directory-admin/internal/handler"
)

type Handler struct {
	treatments *directory.Treatments
}

func NewHandler(treatments *directory.Treatments) *Handler {
	return &Handler{treatments: treatments}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/treatments/:id/draft", h.Draft)
}

// Draft loads a treatment as an edit draft: list fields as comma text, the
// parent disease as its id and the current image as its URL.
func (h *Handler) Draft(c *gin.Context) {
	d, err := h.treatments.LoadDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Success(c, http.StatusOK, d)
}
