package models

import (
	"github.com/google/uuid"
)

// Review thresholds. Items below the selection threshold start
// deselected; items below the review threshold are flagged for a closer
// look before import.
const (
	ReviewSelectionThreshold = 50
	ReviewAttentionThreshold = 70
)

// DuplicateMatch is a scored candidate indicating a detected item likely
// already exists in the wardrobe. Computed on demand, never persisted.
type DuplicateMatch struct {
	ItemID uuid.UUID `json:"item_id"`
	Name   string    `json:"name"`
	Score  int       `json:"score"`
}

// ReviewableItem is a processed detected item augmented with user-review
// state: a selection flag, optional field edits and the best duplicate
// candidate. Edits are independent; commit logic prefers each edited
// field over its detected counterpart when present.
type ReviewableItem struct {
	ProcessedDetectedItem
	Index       int             `json:"index"`
	IsSelected  bool            `json:"is_selected"`
	NeedsReview bool            `json:"needs_review"`
	DuplicateOf *DuplicateMatch `json:"duplicate_of,omitempty"`

	EditedName        *string  `json:"edited_name,omitempty"`
	EditedCategory    *string  `json:"edited_category,omitempty"`
	EditedSubCategory *string  `json:"edited_sub_category,omitempty"`
	EditedColors      []string `json:"edited_colors,omitempty"`
}

// NewReviewableItem materializes review state from a processed item.
// Selection defaults to the confidence threshold; low-confidence items
// start deselected.
func NewReviewableItem(item ProcessedDetectedItem, index int) ReviewableItem {
	return ReviewableItem{
		ProcessedDetectedItem: item,
		Index:                 index,
		IsSelected:            item.Confidence >= ReviewSelectionThreshold,
		NeedsReview:           item.Confidence < ReviewAttentionThreshold,
	}
}

// EffectiveName returns the user-edited name, or empty when the name
// should be auto-generated at import time.
func (r *ReviewableItem) EffectiveName() string {
	if r.EditedName != nil {
		return *r.EditedName
	}
	return ""
}

// EffectiveCategory prefers the edited category over the detected one.
func (r *ReviewableItem) EffectiveCategory() string {
	if r.EditedCategory != nil {
		return *r.EditedCategory
	}
	return r.Category
}

// EffectiveSubCategory prefers the edited sub-category over the detected
// one.
func (r *ReviewableItem) EffectiveSubCategory() string {
	if r.EditedSubCategory != nil {
		return *r.EditedSubCategory
	}
	return r.SubCategory
}

// EffectiveColors prefers the edited colors over the detected ones.
func (r *ReviewableItem) EffectiveColors() []string {
	if r.EditedColors != nil {
		return r.EditedColors
	}
	return r.Colors
}

// EffectiveImageURL returns the cleaned image when background removal
// succeeded, otherwise the original photo. The fallback is expected
// behavior, not an error.
func (r *ReviewableItem) EffectiveImageURL() string {
	if r.BGRemovalStatus == BGRemovalSuccess && r.ProcessedImageURL != nil {
		return *r.ProcessedImageURL
	}
	return r.PhotoURL
}
