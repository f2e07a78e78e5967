package handler

import (
	"civictriage/backend/internal/attachment"
	"civictriage/backend/internal/complaint"
	"civictriage/backend/internal/config"
	"civictriage/backend/internal/localization"
	"civictriage/backend/internal/stats"
	"civictriage/backend/internal/storage"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler тримає сервіси, які обслуговують HTTP API
type Handler struct {
	Storage    storage.Storage
	Complaints *complaint.Service
	Stats      *stats.Engine
	Uploader   *attachment.Uploader
	Localizer  *localization.Localizer

	JWTSecret []byte
	TokenTTL  time.Duration
	Now       func() time.Time
}

func NewHandler(s storage.Storage, complaints *complaint.Service, uploader *attachment.Uploader, loc *localization.Localizer, settings config.Settings) *Handler {
	return &Handler{
		Storage:    s,
		Complaints: complaints,
		Stats:      stats.NewEngine(s),
		Uploader:   uploader,
		Localizer:  loc,
		JWTSecret:  []byte(settings.JWTSecret),
		TokenTTL:   settings.TokenTTL,
		Now:        time.Now,
	}
}

// Register mounts every route. submit guards the citizen-facing write endpoints.
func (h *Handler) Register(r *gin.Engine, submit gin.HandlerFunc) {
	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	staff := h.RequireStaff()

	r.GET("/departments", h.ListDepartments)
	r.GET("/departments/:id", h.GetDepartment)
	r.POST("/departments", staff, h.CreateDepartment)

	complaints := r.Group("/complaints")
	{
		complaints.GET("", h.ListComplaints)
		complaints.GET("/markers", h.Markers)
		complaints.GET("/:id", h.GetComplaint)
		complaints.POST("", submit, h.CreateComplaint)
		complaints.PATCH("/:id/status", staff, h.UpdateStatus)
		complaints.GET("/:id/feedback", h.ListFeedback)
		complaints.POST("/:id/feedback", submit, h.CreateFeedback)
	}

	r.POST("/attachments", submit, h.UploadAttachments)
	r.GET("/attachments/:key", h.GetAttachment)

	r.GET("/stats/dashboard", h.Dashboard)
	r.GET("/stats/departments", h.DepartmentPerformance)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   h.Now().UTC().Format(time.RFC3339),
	})
}
