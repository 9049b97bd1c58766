// Package form serves form descriptions and dropdown options.
package form

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/directory-admin/internal/directory"
	"github.com/jwalitptl/directory-admin/internal/handler"
	"github.com/jwalitptl/directory-admin/internal/store"
	apperrors "github.com/jwalitptl/directory-admin/pkg/errors"
)

type Handler struct {
	dir     *directory.Directory
	options *cache.Cache
}

// NewHandler caches option lists for ttl; zero means one minute.
func NewHandler(dir *directory.Directory, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Handler{dir: dir, options: cache.New(ttl, 2*ttl)}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	forms := rg.Group("/forms")
	{
		forms.GET("/:resource", h.Describe)
		forms.GET("/:resource/options", h.Options)
	}
}

// Invalidate drops cached options; option lists read other stores, so any
// change may affect any form.
func (h *Handler) Invalidate(string) {
	h.options.Flush()
}

type description struct {
	Form  directory.Form `json:"form"`
	Blank store.Draft    `json:"blank"`
}

func (h *Handler) Describe(c *gin.Context) {
	name := c.Param("resource")
	res, ok := h.dir.Resource(name)
	if !ok {
		handler.Fail(c, apperrors.NewNotFound("resource "+name, nil))
		return
	}
	handler.Success(c, http.StatusOK, description{Form: res.Form(), Blank: res.Blank()})
}

func (h *Handler) Options(c *gin.Context) {
	name := c.Param("resource")
	if cached, ok := h.options.Get(name); ok {
		handler.Success(c, http.StatusOK, cached)
		return
	}

	opts, err := h.dir.FormOptions(c.Request.Context(), name)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	h.options.SetDefault(name, opts)
	handler.Success(c, http.StatusOK, opts)
}
