package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is a citizen's rating of how a complaint was handled. It is never updated.
type Feedback struct {
	ID                      string    `gorm:"type:uuid;primaryKey" json:"id"`
	ComplaintID             string    `gorm:"type:uuid;not null;index" json:"complaint_id"`
	Rating                  int       `gorm:"not null" json:"rating"`
	ResponseTimeRating      *int      `json:"response_time_rating"`
	ResolutionQualityRating *int      `json:"resolution_quality_rating"`
	Comment                 *string   `gorm:"type:text" json:"comment"`
	CreatedAt               time.Time `gorm:"index" json:"created_at"`
}

// TableName keeps the singular table name used by the dashboard queries.
func (Feedback) TableName() string {
	return "feedback"
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return
}

// FeedbackInput is the citizen-supplied part of a feedback record.
type FeedbackInput struct {
	Rating                  int     `json:"rating"`
	ResponseTimeRating      *int    `json:"response_time_rating,omitempty"`
	ResolutionQualityRating *int    `json:"resolution_quality_rating,omitempty"`
	Comment                 *string `json:"comment,omitempty"`
}
