package handler

import (
	"civictriage/backend/internal/models"
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListDepartments(c *gin.Context) {
	depts, err := h.Storage.ListDepartments(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, depts)
}

func (h *Handler) GetDepartment(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	dept, err := h.Storage.GetDepartmentByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dept)
}

type departmentRequest struct {
	Name         string          `json:"name"`
	Category     models.Category `json:"category"`
	ContactEmail *string         `json:"contact_email"`
	ContactPhone *string         `json:"contact_phone"`
	Description  *string         `json:"description"`
}

func (h *Handler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, badBody(err))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.fail(c, models.NewValidationError("name", "error.department_name_required", "name is required"))
		return
	}
	if !req.Category.Valid() {
		h.fail(c, models.NewValidationError("category", "error.category_invalid", "unknown category"))
		return
	}

	dept := &models.Department{
		Name:         strings.TrimSpace(req.Name),
		Category:     req.Category,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Description:  req.Description,
	}
	if err := h.Storage.CreateDepartment(c.Request.Context(), dept); err != nil {
		h.fail(c, err)
		return
	}

	log.WithFields(log.Fields{
		"id":       dept.ID,
		"category": dept.Category,
		"by":       c.GetString(ctxStaffSubject),
	}).Info("department created")
	c.JSON(http.StatusCreated, dept)
}
