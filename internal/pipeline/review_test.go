package pipeline

import (
	"testing"

	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

func processedItem(confidence int) models.ProcessedDetectedItem {
	return models.ProcessedDetectedItem{
		DetectedItem: models.DetectedItem{
			Category:    "Tops",
			SubCategory: "T-Shirt",
			Colors:      []string{"Black", "White"},
			Style:       "Casual",
			Material:    "Cotton",
			Position:    "Center",
			Confidence:  confidence,
			PhotoURL:    "https://cdn.test/photo.jpg",
		},
		BGRemovalStatus: models.BGRemovalSkipped,
	}
}

func TestReviewSetDefaults(t *testing.T) {
	tests := []struct {
		confidence      int
		wantSelected    bool
		wantNeedsReview bool
	}{
		{90, true, false},
		{70, true, false},
		{69, true, true},
		{50, true, true},
		{49, false, true},
		{40, false, true},
		{0, false, true},
	}

	for _, tt := range tests {
		set := newReviewSet([]models.ProcessedDetectedItem{processedItem(tt.confidence)}, nil)
		item := set.Items()[0]
		if item.IsSelected != tt.wantSelected {
			t.Errorf("confidence %d: selected = %v, expected %v", tt.confidence, item.IsSelected, tt.wantSelected)
		}
		if item.NeedsReview != tt.wantNeedsReview {
			t.Errorf("confidence %d: needsReview = %v, expected %v", tt.confidence, item.NeedsReview, tt.wantNeedsReview)
		}
	}
}

func TestReviewSetIndexesFollowDetectionOrder(t *testing.T) {
	set := newReviewSet([]models.ProcessedDetectedItem{
		processedItem(90),
		processedItem(80),
		processedItem(70),
	}, nil)

	for i, item := range set.Items() {
		if item.Index != i {
			t.Errorf("item at position %d has index %d", i, item.Index)
		}
	}
}

func TestReviewSetToggle(t *testing.T) {
	set := newReviewSet([]models.ProcessedDetectedItem{processedItem(90)}, nil)

	item, err := set.Toggle(0)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if item.IsSelected {
		t.Error("toggle did not deselect a selected item")
	}
	item, err = set.Toggle(0)
	if err != nil {
		t.Fatalf("second Toggle failed: %v", err)
	}
	if !item.IsSelected {
		t.Error("toggle did not reselect")
	}

	if _, err := set.Toggle(5); err == nil {
		t.Error("out-of-range toggle succeeded")
	}
	if _, err := set.Toggle(-1); err == nil {
		t.Error("negative-index toggle succeeded")
	}
}

func TestReviewSetSelectAll(t *testing.T) {
	set := newReviewSet([]models.ProcessedDetectedItem{
		processedItem(90),
		processedItem(40),
		processedItem(60),
	}, nil)

	set.SelectAll(true)
	if set.SelectedCount() != 3 {
		t.Errorf("selected = %d after select all, expected 3", set.SelectedCount())
	}
	set.SelectAll(false)
	if set.SelectedCount() != 0 {
		t.Errorf("selected = %d after deselect all, expected 0", set.SelectedCount())
	}
}

func TestReviewSetEditsCompose(t *testing.T) {
	set := newReviewSet([]models.ProcessedDetectedItem{processedItem(90)}, nil)

	name := "Concert Tee"
	if _, err := set.Edit(0, ReviewEdits{Name: &name}); err != nil {
		t.Fatalf("name edit failed: %v", err)
	}
	colors := []string{"Navy"}
	item, err := set.Edit(0, ReviewEdits{Colors: colors})
	if err != nil {
		t.Fatalf("colors edit failed: %v", err)
	}

	if item.EditedName == nil || *item.EditedName != name {
		t.Error("second edit dropped the earlier name edit")
	}
	if len(item.EditedColors) != 1 || item.EditedColors[0] != "Navy" {
		t.Errorf("edited colors = %v", item.EditedColors)
	}
	if item.EditedCategory != nil || item.EditedSubCategory != nil {
		t.Error("unedited fields picked up edits")
	}

	if _, err := set.Edit(3, ReviewEdits{Name: &name}); err == nil {
		t.Error("out-of-range edit succeeded")
	}
}

func TestReviewSetItemsReturnsACopy(t *testing.T) {
	set := newReviewSet([]models.ProcessedDetectedItem{processedItem(90)}, nil)

	items := set.Items()
	items[0].IsSelected = false

	if set.SelectedCount() != 1 {
		t.Error("mutating the returned slice changed the review set")
	}
}

func TestReviewSetDuplicateEnrichment(t *testing.T) {
	existing := models.WardrobeItem{
		Name:        "Everyday tee",
		Category:    "tops",
		SubCategory: "T-Shirt",
		Colors:      []string{"Black"},
	}
	unrelated := models.WardrobeItem{
		Name:        "Hiking boots",
		Category:    "shoes",
		SubCategory: "Boots",
		Colors:      []string{"Brown"},
	}

	set := newReviewSet([]models.ProcessedDetectedItem{processedItem(90)}, []models.WardrobeItem{unrelated, existing})
	item := set.Items()[0]

	if item.DuplicateOf == nil {
		t.Fatal("no duplicate candidate found")
	}
	if item.DuplicateOf.Name != "Everyday tee" {
		t.Errorf("best duplicate = %q, expected the matching tee", item.DuplicateOf.Name)
	}

	empty := newReviewSet([]models.ProcessedDetectedItem{processedItem(90)}, nil)
	if empty.Items()[0].DuplicateOf != nil {
		t.Error("duplicate flagged with an empty wardrobe")
	}
}
