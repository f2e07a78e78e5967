package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Complaint is a citizen-submitted issue tracked through the resolution lifecycle.
// Score, tier and department are fixed at submission; the lifecycle timestamps are
// owned by the complaint and only move through status transitions.
type Complaint struct {
	ID          string   `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string   `gorm:"type:text;not null" json:"title"`
	Description string   `gorm:"type:text;not null" json:"description"`
	Category    Category `gorm:"type:text;not null;index" json:"category"`
	Priority    Priority `gorm:"type:text;not null;index" json:"priority"`
	Status      Status   `gorm:"type:text;not null;index" json:"status"`

	LocationAddress string   `gorm:"type:text;not null" json:"location_address"`
	LocationLat     *float64 `json:"location_lat"`
	LocationLng     *float64 `json:"location_lng"`

	DepartmentID *string     `gorm:"type:uuid;index" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`

	CitizenName  *string `gorm:"type:text" json:"citizen_name"`
	CitizenEmail *string `gorm:"type:text" json:"citizen_email"`
	CitizenPhone *string `gorm:"type:text" json:"citizen_phone"`

	// ImageURLs are public attachment URLs, stored as a PostgreSQL text[] column.
	ImageURLs pq.StringArray `gorm:"column:image_urls;type:text[]" json:"image_urls"`

	PriorityScore          int     `gorm:"not null;index" json:"priority_score"`
	UrgencyFactor          float64 `gorm:"not null" json:"urgency_factor"`
	SeverityFactor         float64 `gorm:"not null" json:"severity_factor"`
	ImpactFactor           float64 `gorm:"not null" json:"impact_factor"`
	SimilarComplaintsCount int     `gorm:"not null" json:"similar_complaints_count"`

	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	AssignedAt *time.Time `json:"assigned_at"`
	ResolvedAt *time.Time `gorm:"index" json:"resolved_at"`
}

// BeforeCreate generates the complaint UUID if none was set.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// ComplaintInput is the citizen-supplied part of a new complaint.
type ComplaintInput struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Category        Category `json:"category"`
	LocationAddress string   `json:"location_address"`
	LocationLat     *float64 `json:"location_lat,omitempty"`
	LocationLng     *float64 `json:"location_lng,omitempty"`
	CitizenName     *string  `json:"citizen_name,omitempty"`
	CitizenEmail    *string  `json:"citizen_email,omitempty"`
	CitizenPhone    *string  `json:"citizen_phone,omitempty"`
	ImageURLs       []string `json:"image_urls,omitempty"`
}

// ResolutionSpan is the pair of timestamps used for resolution-time averages.
type ResolutionSpan struct {
	CreatedAt  time.Time
	ResolvedAt time.Time
}

// Hours returns the resolution time in hours.
func (r ResolutionSpan) Hours() float64 {
	return r.ResolvedAt.Sub(r.CreatedAt).Hours()
}

// ComplaintMarker is the map projection of a complaint with coordinates.
type ComplaintMarker struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`
	Lat      float64  `json:"lat"`
	Lng      float64  `json:"lng"`
	Category Category `json:"category"`
}
