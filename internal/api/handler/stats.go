package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Dashboard(c *gin.Context) {
	summary, err := h.Stats.Dashboard(c.Request.Context(), h.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) DepartmentPerformance(c *gin.Context) {
	report, err := h.Stats.Report(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
