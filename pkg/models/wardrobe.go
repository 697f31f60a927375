package models

import (
	"time"

	"github.com/google/uuid"
)

// WardrobeItem represents a single garment in a user's wardrobe inventory
type WardrobeItem struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"not null" json:"name" validate:"required"`
	Category    string    `gorm:"not null;index" json:"category" validate:"required"`
	SubCategory string    `json:"sub_category"`
	Colors      []string  `gorm:"type:jsonb;serializer:json" json:"colors"`
	Style       string    `json:"style"`
	Material    string    `json:"material"`
	Brand       string    `json:"brand"`

	// ImageURL is the image shown in the app; when background removal
	// succeeded it points at the processed asset, otherwise at the
	// original photo.
	ImageURL          string `json:"image_url"`
	ProcessedImageURL string `json:"processed_image_url,omitempty"`
	SourcePhotoURL    string `json:"source_photo_url,omitempty"`

	// Extraction provenance
	AIExtracted bool `gorm:"default:false" json:"ai_extracted"`
	Confidence  int  `gorm:"default:0" json:"confidence"`

	// Wear tracking for sustainability metrics
	WearCount     int        `gorm:"default:0" json:"wear_count"`
	LastWornAt    *time.Time `json:"last_worn_at,omitempty"`
	PurchasePrice *float64   `json:"purchase_price,omitempty"`
}

// CostPerWear returns purchase price divided by wear count, or the full
// price for an unworn item. Zero when no price is recorded.
func (w *WardrobeItem) CostPerWear() float64 {
	if w.PurchasePrice == nil || *w.PurchasePrice <= 0 {
		return 0
	}
	if w.WearCount <= 0 {
		return *w.PurchasePrice
	}
	return *w.PurchasePrice / float64(w.WearCount)
}

// RegisterWear increments the wear counter and stamps the wear time
func (w *WardrobeItem) RegisterWear(at time.Time) {
	w.WearCount++
	w.LastWornAt = &at
}
