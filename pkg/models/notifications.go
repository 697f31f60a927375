package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies in-app notifications
type NotificationType string

const (
	NotificationExtractionCompleted NotificationType = "extraction_completed"
	NotificationExtractionFailed    NotificationType = "extraction_failed"
	NotificationImportCompleted     NotificationType = "import_completed"
)

// Notification is an in-app notification row for a user
type Notification struct {
	BaseModel
	UserID uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type   NotificationType `gorm:"not null" json:"type"`
	Title  string           `gorm:"not null" json:"title"`
	Body   string           `json:"body"`
	JobID  *uuid.UUID       `gorm:"type:uuid" json:"job_id,omitempty"`
	Read   bool             `gorm:"default:false" json:"read"`
	ReadAt *time.Time       `json:"read_at,omitempty"`
}

// MarkRead flags the notification as read at the given time
func (n *Notification) MarkRead(at time.Time) {
	n.Read = true
	n.ReadAt = &at
}
