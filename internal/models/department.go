package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Department is the organizational unit complaints of one category are routed to.
type Department struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"type:text;not null;index" json:"name"`
	Category     Category  `gorm:"type:text;not null;index" json:"category"`
	ContactEmail *string   `gorm:"type:text" json:"contact_email"`
	ContactPhone *string   `gorm:"type:text" json:"contact_phone"`
	Description  *string   `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

func (d *Department) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return
}
