package models

import "time"

// Attachment is an uploaded complaint image stored under a public key.
type Attachment struct {
	Key         string    `gorm:"primaryKey;type:text" json:"key"`
	ContentType string    `gorm:"type:text;not null" json:"content_type"`
	Size        int       `gorm:"not null" json:"size"`
	Data        []byte    `gorm:"type:bytea;not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
