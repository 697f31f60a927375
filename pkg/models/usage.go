package models

import (
	"github.com/google/uuid"
)

// RemovalUsage counts background removal calls per user per month.
// Month is formatted as "2006-01" so rows sort chronologically.
type RemovalUsage struct {
	BaseModel
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_removal_usage_user_month" json:"user_id"`
	Month  string    `gorm:"not null;uniqueIndex:idx_removal_usage_user_month" json:"month"`
	Count  int       `gorm:"default:0" json:"count"`
}

// RemovalUsageSummary is the API shape for the monthly usage endpoint
type RemovalUsageSummary struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}
