package models

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionJobStatus represents the lifecycle state of an extraction job
type ExtractionJobStatus string

const (
	ExtractionJobStatusPending    ExtractionJobStatus = "pending"
	ExtractionJobStatusProcessing ExtractionJobStatus = "processing"
	ExtractionJobStatusCompleted  ExtractionJobStatus = "completed"
	ExtractionJobStatusFailed     ExtractionJobStatus = "failed"
)

// BGRemovalStatus marks the outcome of background removal for one item
type BGRemovalStatus string

const (
	BGRemovalSuccess BGRemovalStatus = "success"
	BGRemovalFailed  BGRemovalStatus = "failed"
	BGRemovalSkipped BGRemovalStatus = "skipped"
)

// DetectedItem is one clothing item the vision model found in a photo
type DetectedItem struct {
	Category    string   `json:"category"`
	SubCategory string   `json:"sub_category"`
	Colors      []string `json:"colors"`
	Style       string   `json:"style,omitempty"`
	Material    string   `json:"material,omitempty"`
	Position    string   `json:"position,omitempty"`
	Confidence  int      `json:"confidence"`
	PhotoIndex  int      `json:"photo_index"`
	PhotoURL    string   `json:"photo_url"`
}

// ProcessedDetectedItem is a detected item after the background removal
// stage ran over it
type ProcessedDetectedItem struct {
	DetectedItem
	BGRemovalStatus   BGRemovalStatus `json:"bg_removal_status"`
	ProcessedImageURL *string         `json:"processed_image_url,omitempty"`
}

// PhotoDetectionResult holds the per-photo outcome of the detection stage
type PhotoDetectionResult struct {
	PhotoURL      string         `json:"photo_url"`
	PhotoIndex    int            `json:"photo_index"`
	DetectedItems []DetectedItem `json:"detected_items"`
	Error         *string        `json:"error,omitempty"`
}

// DetectionResult aggregates detection output across a whole photo batch
type DetectionResult struct {
	Photos             []PhotoDetectionResult `json:"photos"`
	TotalItemsDetected int                    `json:"total_items_detected"`
	FailedPhotos       int                    `json:"failed_photos"`
}

// ExtractionJob tracks a bulk wardrobe extraction from upload to import
type ExtractionJob struct {
	BaseModel
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	Status          ExtractionJobStatus `gorm:"not null;default:'pending'" json:"status"`
	PhotoURLs       []string            `gorm:"type:jsonb;serializer:json" json:"photo_urls"`
	TotalPhotos     int                 `gorm:"default:0" json:"total_photos"`
	ProcessedPhotos int                 `gorm:"default:0" json:"processed_photos"`
	DetectedItems   *DetectionResult    `gorm:"type:jsonb;serializer:json" json:"detected_items,omitempty"`
	ItemsAddedCount int                 `gorm:"default:0" json:"items_added_count"`
	ErrorMessage    *string             `json:"error_message,omitempty"`
	StartedAt       *time.Time          `json:"started_at,omitempty"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
}

// CalculateProgress returns completion as a 0-100 percentage
func (j *ExtractionJob) CalculateProgress() int {
	if j.TotalPhotos == 0 {
		return 0
	}
	progress := (j.ProcessedPhotos * 100) / j.TotalPhotos
	if progress > 100 {
		progress = 100
	}
	return progress
}

// ExtractionJobProgress is the wire shape pushed to progress listeners
type ExtractionJobProgress struct {
	JobID           uuid.UUID           `json:"job_id"`
	Status          ExtractionJobStatus `json:"status"`
	TotalPhotos     int                 `json:"total_photos"`
	ProcessedPhotos int                 `json:"processed_photos"`
	Progress        int                 `json:"progress"`
	ItemsDetected   int                 `json:"items_detected"`
	ItemsAdded      int                 `json:"items_added"`
	ErrorMessage    *string             `json:"error_message,omitempty"`
}

// ToProgress converts the job row into its progress wire shape
func (j *ExtractionJob) ToProgress() ExtractionJobProgress {
	itemsDetected := 0
	if j.DetectedItems != nil {
		itemsDetected = j.DetectedItems.TotalItemsDetected
	}
	return ExtractionJobProgress{
		JobID:           j.ID,
		Status:          j.Status,
		TotalPhotos:     j.TotalPhotos,
		ProcessedPhotos: j.ProcessedPhotos,
		Progress:        j.CalculateProgress(),
		ItemsDetected:   itemsDetected,
		ItemsAdded:      j.ItemsAddedCount,
		ErrorMessage:    j.ErrorMessage,
	}
}

// IsTerminal reports whether the job reached a final state
func (j *ExtractionJob) IsTerminal() bool {
	return j.Status == ExtractionJobStatusCompleted || j.Status == ExtractionJobStatusFailed
}
