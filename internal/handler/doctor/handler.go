// Package doctor serves the admin doctor table, its CSV export and the
// verify toggle.
package doctor

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/directory-admin/internal/directory"
	"github.com/jwalitptl/directory-admin/internal/handler"
	"github.com/jwalitptl/directory-admin/internal/view"
	apperrors "github.com/jwalitptl/directory-admin/pkg/errors"
)

type Handler struct {
	doctors *directory.Doctors
	now     func() time.Time
}

func NewHandler(doctors *directory.Doctors) *Handler {
	return &Handler{doctors: doctors, now: time.Now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	doctors := rg.Group("/doctors")
	{
		doctors.GET("", h.Table)
		doctors.GET("/export.csv", h.Export)
		doctors.PATCH("/:id/verify", h.Verify)
	}
}

func (h *Handler) query(c *gin.Context) (view.TableQuery, bool) {
	var q view.TableQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		handler.Fail(c, apperrors.NewBadRequest("invalid table query", err))
		return q, false
	}
	return q, true
}

// Table returns one page of the admin doctor table with stats.
func (h *Handler) Table(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	if err := h.doctors.FetchAll(c.Request.Context()); err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Success(c, http.StatusOK, view.DoctorTable(view.DoctorRows(h.doctors.Items()), q))
}

// Export writes every row matching the search and filter as CSV.
func (h *Handler) Export(c *gin.Context) {
	q, ok := h.query(c)
	if !ok {
		return
	}
	if err := h.doctors.FetchAll(c.Request.Context()); err != nil {
		handler.Fail(c, err)
		return
	}
	rows := view.FilterDoctors(view.DoctorRows(h.doctors.Items()), q)

	name := "doctors-" + h.now().Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := view.WriteDoctorsCSV(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}

// Verify flips a doctor's verified flag. The list is loaded first when the
// doctor is not in it yet.
func (h *Handler) Verify(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.doctors.Find(id); !ok {
		if err := h.doctors.FetchAll(c.Request.Context()); err != nil {
			handler.Fail(c, err)
			return
		}
	}
	doc, err := h.doctors.ToggleVerified(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.Success(c, http.StatusOK, view.NewDoctorRow(doc))
}
