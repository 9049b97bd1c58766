// Package resource exposes every entity store through one set of CRUD routes.
package resource

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/directory-admin/internal/directory"
	"github.com/jwalitptl/directory-admin/internal/handler"
	apperrors "github.com/jwalitptl/directory-admin/pkg/errors"
)

type Handler struct {
	dir *directory.Directory
	// onChange runs after a successful mutation of a resource.
	onChange func(resource string)
}

func NewHandler(dir *directory.Directory, onChange func(resource string)) *Handler {
	if onChange == nil {
		onChange = func(string) {}
	}
	return &Handler{dir: dir, onChange: onChange}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	resources := rg.Group("/resources")
	{
		resources.GET("", h.Index)
		resources.GET("/:resource", h.List)
		resources.POST("/:resource", h.Create)
		resources.GET("/:resource/:id", h.Get)
		resources.PATCH("/:resource/:id", h.Update)
		resources.DELETE("/:resource/:id", h.Delete)
	}
}

type listResponse struct {
	Rows   []interface{}    `json:"rows"`
	Status directory.Status `json:"status"`
}

type indexEntry struct {
	Name   string           `json:"name"`
	Form   directory.Form   `json:"form"`
	Status directory.Status `json:"status"`
}

func (h *Handler) resource(c *gin.Context) (directory.Resource, bool) {
	name := c.Param("resource")
	res, ok := h.dir.Resource(name)
	if !ok {
		handler.Fail(c, apperrors.NewNotFound("resource "+name, nil))
		return nil, false
	}
	return res, true
}

// Index lists the resources with their forms and current state.
func (h *Handler) Index(c *gin.Context) {
	out := make([]indexEntry, 0, len(h.dir.Names()))
	for _, name := range h.dir.Names() {
		res, _ := h.dir.Resource(name)
		out = append(out, indexEntry{Name: name, Form: res.Form(), Status: res.Status()})
	}
	handler.Success(c, http.StatusOK, out)
}

func (h *Handler) List(c *gin.Context) {
	res, ok := h.resource(c)
	if !ok {
		return
	}
	if err := res.Load(c.Request.Context()); err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Success(c, http.StatusOK, listResponse{Rows: res.Rows(), Status: res.Status()})
}

func (h *Handler) Get(c *gin.Context) {
	res, ok := h.resource(c)
	if !ok {
		return
	}
	row, err := res.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Success(c, http.StatusOK, row)
}

func (h *Handler) Create(c *gin.Context) {
	res, ok := h.resource(c)
	if !ok {
		return
	}
	d, err := handler.BindDraft(c, res.Form())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	row, err := res.Create(c.Request.Context(), d)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	h.onChange(res.Name())
	handler.Success(c, http.StatusCreated, row)
}

func (h *Handler) Update(c *gin.Context) {
	res, ok := h.resource(c)
	if !ok {
		return
	}
	d, err := handler.BindDraft(c, res.Form())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	row, err := res.Update(c.Request.Context(), c.Param("id"), d)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	h.onChange(res.Name())
	handler.Success(c, http.StatusOK, row)
}

func (h *Handler) Delete(c *gin.Context) {
	res, ok := h.resource(c)
	if !ok {
		return
	}
	if err := res.Delete(c.Request.Context(), c.Param("id"), handler.HeaderConfirmer(c)); err != nil {
		handler.Fail(c, err)
		return
	}
	h.onChange(res.Name())
	handler.Success(c, http.StatusOK, res.Status())
}
