package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// RemovalConfidenceThreshold is the minimum detection confidence for an
// item to be worth a background removal call.
const RemovalConfidenceThreshold = 50

// ImageBackgroundRemover isolates a clothing item from its photo
// background and returns the edited image bytes.
type ImageBackgroundRemover interface {
	Available() bool
	RemoveBackground(ctx context.Context, imageData []byte, mimeType string) ([]byte, error)
}

// PhotoStore is the slice of storage the background processor needs.
type PhotoStore interface {
	Download(url string) ([]byte, string, error)
	Upload(key string, data []byte, contentType string) (string, error)
}

// RemovalUsageRecorder records successful removals against a monthly
// counter for cost tracking.
type RemovalUsageRecorder interface {
	IncrementMonthly(userID uuid.UUID, month string, amount int) error
}

// RemovalProgress carries running counts for one background removal tick.
type RemovalProgress struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// RemovalProgressFunc receives progress ticks during background removal.
type RemovalProgressFunc func(RemovalProgress)

// BackgroundProcessor runs detected items through background removal,
// one item at a time. Removal calls have per-call cost and the progress
// contract assumes one-at-a-time completion, so this must stay
// sequential.
type BackgroundProcessor struct {
	remover ImageBackgroundRemover
	storage PhotoStore
	usage   RemovalUsageRecorder
}

// NewBackgroundProcessor creates a new background processor
func NewBackgroundProcessor(remover ImageBackgroundRemover, storage PhotoStore, usage RemovalUsageRecorder) *BackgroundProcessor {
	return &BackgroundProcessor{remover: remover, storage: storage, usage: usage}
}

// ProcessItems attempts background removal for each detected item in
// order. Items below the confidence threshold are skipped without any
// network call, as is everything when the removal service is not
// configured. A failed attempt marks the item failed and keeps the
// original photo as its image. The progress callback fires before each
// item and once more with final counts.
func (p *BackgroundProcessor) ProcessItems(ctx context.Context, userID uuid.UUID, items []models.DetectedItem, progress RemovalProgressFunc) []models.ProcessedDetectedItem {
	processed := make([]models.ProcessedDetectedItem, 0, len(items))
	available := p.remover.Available()
	succeeded := 0
	failed := 0
	skipped := 0

	for i, item := range items {
		if progress != nil {
			progress(RemovalProgress{
				Total:     len(items),
				Processed: i,
				Succeeded: succeeded,
				Failed:    failed,
				Skipped:   skipped,
			})
		}

		result := models.ProcessedDetectedItem{DetectedItem: item}

		if item.Confidence < RemovalConfidenceThreshold || !available {
			result.BGRemovalStatus = models.BGRemovalSkipped
			skipped++
			processed = append(processed, result)
			continue
		}

		url, err := p.removeOne(ctx, userID, item)
		if err != nil {
			log.Warn().
				Int("photo_index", item.PhotoIndex).
				Str("sub_category", item.SubCategory).
				Err(err).
				Msg("Background removal failed, keeping original photo")
			result.BGRemovalStatus = models.BGRemovalFailed
			failed++
		} else {
			result.BGRemovalStatus = models.BGRemovalSuccess
			result.ProcessedImageURL = &url
			succeeded++
		}
		processed = append(processed, result)
	}

	if progress != nil {
		progress(RemovalProgress{
			Total:     len(items),
			Processed: len(items),
			Succeeded: succeeded,
			Failed:    failed,
			Skipped:   skipped,
		})
	}

	p.recordUsage(userID, succeeded)

	log.Info().
		Str("user_id", userID.String()).
		Int("items", len(items)).
		Int("succeeded", succeeded).
		Int("failed", failed).
		Int("skipped", skipped).
		Msg("Background removal batch completed")

	return processed
}

// removeOne downloads the source photo, runs removal and stores the
// cleaned image
func (p *BackgroundProcessor) removeOne(ctx context.Context, userID uuid.UUID, item models.DetectedItem) (string, error) {
	data, mimeType, err := p.storage.Download(item.PhotoURL)
	if err != nil {
		return "", fmt.Errorf("source photo download failed: %w", err)
	}

	cleaned, err := p.remover.RemoveBackground(ctx, data, mimeType)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("wardrobe/%s/processed/%s.png", userID, uuid.New())
	url, err := p.storage.Upload(key, cleaned, "image/png")
	if err != nil {
		return "", fmt.Errorf("processed image upload failed: %w", err)
	}
	return url, nil
}

// recordUsage is best-effort: a failure here must never affect the
// returned item list
func (p *BackgroundProcessor) recordUsage(userID uuid.UUID, count int) {
	if count == 0 || p.usage == nil {
		return
	}
	month := time.Now().Format("2006-01")
	if err := p.usage.IncrementMonthly(userID, month, count); err != nil {
		log.Warn().
			Str("user_id", userID.String()).
			Str("month", month).
			Int("count", count).
			Err(err).
			Msg("Failed to record removal usage")
	}
}
