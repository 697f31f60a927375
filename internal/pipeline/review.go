package pipeline

import (
	"fmt"

	"github.com/yassinema02/vestiaire-sub000/internal/taxonomy"
	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// ReviewEdits carries a partial update for one reviewable item. Nil
// fields are untouched, so repeated edits compose instead of clobbering
// each other. Colors uses nil for "not edited"; an empty non-nil slice
// clears the detected colors.
type ReviewEdits struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	SubCategory *string  `json:"sub_category"`
	Colors      []string `json:"colors"`
}

// reviewSet holds the reviewable items of one pipeline run. It is owned
// by a Session and always accessed under the session's lock.
type reviewSet struct {
	items []models.ReviewableItem
}

// newReviewSet materializes review state from the processed items:
// selection and attention flags from confidence, plus the best duplicate
// candidate from the user's existing wardrobe.
func newReviewSet(processed []models.ProcessedDetectedItem, wardrobe []models.WardrobeItem) *reviewSet {
	items := make([]models.ReviewableItem, 0, len(processed))
	for i, item := range processed {
		reviewable := models.NewReviewableItem(item, i)
		reviewable.DuplicateOf = taxonomy.BestDuplicate(item.DetectedItem, wardrobe)
		items = append(items, reviewable)
	}
	return &reviewSet{items: items}
}

// Items returns a copy of the review set. Callers may hold the copy
// across lock boundaries without racing later edits.
func (r *reviewSet) Items() []models.ReviewableItem {
	items := make([]models.ReviewableItem, len(r.items))
	copy(items, r.items)
	return items
}

func (r *reviewSet) Len() int {
	return len(r.items)
}

// SelectedCount returns how many items are currently selected for
// import.
func (r *reviewSet) SelectedCount() int {
	count := 0
	for _, item := range r.items {
		if item.IsSelected {
			count++
		}
	}
	return count
}

// Toggle flips one item's selection flag and returns the updated item.
func (r *reviewSet) Toggle(index int) (models.ReviewableItem, error) {
	if index < 0 || index >= len(r.items) {
		return models.ReviewableItem{}, fmt.Errorf("review item %d not found", index)
	}
	r.items[index].IsSelected = !r.items[index].IsSelected
	return r.items[index], nil
}

// SelectAll sets every item's selection flag.
func (r *reviewSet) SelectAll(selected bool) {
	for i := range r.items {
		r.items[i].IsSelected = selected
	}
}

// Edit applies a partial update to one item. Only the edits carried in
// the request change; earlier edits to other fields are preserved.
func (r *reviewSet) Edit(index int, edits ReviewEdits) (models.ReviewableItem, error) {
	if index < 0 || index >= len(r.items) {
		return models.ReviewableItem{}, fmt.Errorf("review item %d not found", index)
	}

	item := &r.items[index]
	if edits.Name != nil {
		item.EditedName = edits.Name
	}
	if edits.Category != nil {
		item.EditedCategory = edits.Category
	}
	if edits.SubCategory != nil {
		item.EditedSubCategory = edits.SubCategory
	}
	if edits.Colors != nil {
		item.EditedColors = edits.Colors
	}
	return *item, nil
}
