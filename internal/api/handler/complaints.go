package handler

import (
	"civictriage/backend/internal/models"
	"civictriage/backend/internal/storage"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	geojson "github.com/paulmach/go.geojson"
)

const dateOnly = "2006-01-02"

func (h *Handler) ListComplaints(c *gin.Context) {
	filter, err := ParseFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	complaints, err := h.Complaints.List(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

func (h *Handler) GetComplaint(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	complaint, err := h.Complaints.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

func (h *Handler) CreateComplaint(c *gin.Context) {
	var in models.ComplaintInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, badBody(err))
		return
	}

	complaint, err := h.Complaints.Submit(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, complaint)
}

type statusRequest struct {
	Status models.Status `json:"status"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, badBody(err))
		return
	}

	complaint, err := h.Complaints.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

func (h *Handler) ListFeedback(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	feedback, err := h.Complaints.ListFeedback(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (h *Handler) CreateFeedback(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var in models.FeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, badBody(err))
		return
	}

	feedback, err := h.Complaints.SubmitFeedback(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

// Markers renders complaints with coordinates as a GeoJSON FeatureCollection.
func (h *Handler) Markers(c *gin.Context) {
	near, err := parseNear(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	markers, err := h.Complaints.Markers(c.Request.Context(), near)
	if err != nil {
		h.fail(c, err)
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, m := range markers {
		f := geojson.NewPointFeature([]float64{m.Lng, m.Lat})
		f.ID = m.ID
		f.SetProperty("title", m.Title)
		f.SetProperty("priority", string(m.Priority))
		f.SetProperty("status", string(m.Status))
		f.SetProperty("category", string(m.Category))
		fc.AddFeature(f)
	}
	c.JSON(http.StatusOK, fc)
}

// ParseFilter builds a complaint filter from the list page query string.
func ParseFilter(c *gin.Context) (models.ComplaintFilter, error) {
	var f models.ComplaintFilter

	for _, s := range splitList(c.Query("status")) {
		status := models.Status(s)
		if !status.Valid() {
			return f, queryError("status")
		}
		f.Statuses = append(f.Statuses, status)
	}
	for _, p := range splitList(c.Query("priority")) {
		priority := models.Priority(p)
		if !priority.Valid() {
			return f, queryError("priority")
		}
		f.Priorities = append(f.Priorities, priority)
	}
	for _, v := range splitList(c.Query("category")) {
		category := models.Category(v)
		if !category.Valid() {
			return f, queryError("category")
		}
		f.Categories = append(f.Categories, category)
	}

	f.DepartmentID = strings.TrimSpace(c.Query("department_id"))
	if f.DepartmentID != "" && !storage.ValidID(f.DepartmentID) {
		return f, queryError("department_id")
	}
	f.Search = strings.TrimSpace(c.Query("search"))

	if raw := c.Query("date_from"); raw != "" {
		t, _, err := parseDate(raw)
		if err != nil {
			return f, queryError("date_from")
		}
		f.CreatedFrom = &t
	}
	if raw := c.Query("date_to"); raw != "" {
		t, dayOnly, err := parseDate(raw)
		if err != nil {
			return f, queryError("date_to")
		}
		if dayOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.CreatedTo = &t
	}

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, queryError("limit")
		}
		f.Limit = n
	}
	return f, nil
}

// parseDate accepts RFC3339 timestamps and plain dates. A plain date is reported so
// that an upper bound can cover the whole day.
func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(dateOnly, raw)
	return t, true, err
}

func parseNear(c *gin.Context) (*models.Near, error) {
	rawLat, rawLng, rawRadius := c.Query("lat"), c.Query("lng"), c.Query("radius_km")
	if rawLat == "" && rawLng == "" && rawRadius == "" {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, queryError("lat")
	}
	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, queryError("lng")
	}
	radius, err := strconv.ParseFloat(rawRadius, 64)
	if err != nil || radius <= 0 {
		return nil, queryError("radius_km")
	}
	return &models.Near{Lat: lat, Lng: lng, RadiusKm: radius}, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// idParam returns the :id path value. A value that is not a UUID cannot name any
// record, so it is reported as not found.
func idParam(c *gin.Context) (string, error) {
	id := c.Param("id")
	if !storage.ValidID(id) {
		return "", storage.ErrNotFound
	}
	return id, nil
}

func queryError(field string) error {
	return models.NewValidationError(field, "error.query_invalid", "invalid "+field)
}
