package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yassinema02/vestiaire-sub000/internal/taxonomy"
	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// WardrobeCreator is the slice of wardrobe persistence the importer
// needs.
type WardrobeCreator interface {
	Create(item *models.WardrobeItem) error
}

// ItemsAddedRecorder records the import outcome on the owning job.
type ItemsAddedRecorder interface {
	UpdateItemsAdded(id uuid.UUID, count int) error
}

// ImporterService commits reviewed extraction items into the wardrobe.
type ImporterService struct {
	wardrobe WardrobeCreator
	jobs     ItemsAddedRecorder
}

// NewImporterService creates a new importer service
func NewImporterService(wardrobe WardrobeCreator, jobs ItemsAddedRecorder) *ImporterService {
	return &ImporterService{wardrobe: wardrobe, jobs: jobs}
}

// ImportSelected commits the selected subset of a review set as wardrobe
// items and returns how many were created. Each item is an independent
// create; one failing is logged and skipped. Zero selected items
// short-circuits without any datastore call. When a job ID is given,
// the job's items-added count is updated to the returned value.
func (s *ImporterService) ImportSelected(userID uuid.UUID, jobID *uuid.UUID, items []models.ReviewableItem) int {
	selected := make([]models.ReviewableItem, 0, len(items))
	for _, item := range items {
		if item.IsSelected {
			selected = append(selected, item)
		}
	}
	if len(selected) == 0 {
		return 0
	}

	added := 0
	for _, item := range selected {
		wardrobeItem := buildWardrobeItem(userID, item)
		if err := s.wardrobe.Create(wardrobeItem); err != nil {
			log.Warn().
				Int("index", item.Index).
				Str("name", wardrobeItem.Name).
				Err(err).
				Msg("Failed to import item, skipping")
			continue
		}
		added++
	}

	if s.jobs != nil && jobID != nil {
		if err := s.jobs.UpdateItemsAdded(*jobID, added); err != nil {
			log.Warn().
				Str("job_id", jobID.String()).
				Err(err).
				Msg("Failed to record items-added count")
		}
	}

	log.Info().
		Str("user_id", userID.String()).
		Int("selected", len(selected)).
		Int("added", added).
		Msg("Review import completed")

	return added
}

// buildWardrobeItem resolves a reviewable item's final field values:
// edited values win over detected ones, colors pass through the palette
// normalizer, and a missing name is auto-generated.
func buildWardrobeItem(userID uuid.UUID, item models.ReviewableItem) *models.WardrobeItem {
	category := taxonomy.NormalizeCategory(item.EffectiveCategory())
	subCategory := taxonomy.NormalizeSubCategory(item.EffectiveSubCategory(), category)

	rawColors := item.EffectiveColors()
	colors := taxonomy.NormalizeColors(rawColors)
	if len(colors) == 0 {
		// Off-palette colors survive commit rather than vanishing.
		colors = rawColors
	}
	if colors == nil {
		colors = []string{}
	}

	name := strings.TrimSpace(item.EffectiveName())
	if name == "" {
		name = generateItemName(subCategory, colors)
	}

	wardrobeItem := &models.WardrobeItem{
		UserID:         userID,
		Name:           name,
		Category:       category,
		SubCategory:    subCategory,
		Colors:         colors,
		Style:          item.Style,
		Material:       item.Material,
		ImageURL:       item.EffectiveImageURL(),
		SourcePhotoURL: item.PhotoURL,
		AIExtracted:    true,
		Confidence:     item.Confidence,
	}
	if item.BGRemovalStatus == models.BGRemovalSuccess && item.ProcessedImageURL != nil {
		wardrobeItem.ProcessedImageURL = *item.ProcessedImageURL
	}
	return wardrobeItem
}

// generateItemName builds the fallback "{sub-category} - {first color}"
// display name, dropping the separator when there is no color.
func generateItemName(subCategory string, colors []string) string {
	if len(colors) == 0 || colors[0] == "" {
		return subCategory
	}
	return fmt.Sprintf("%s - %s", subCategory, colors[0])
}
