package taxonomy

import (
	"sort"

	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// Scoring weights for duplicate detection. The threshold requires at
// least two matching signals: category alone can never flag a duplicate.
const (
	categoryPoints    = 40
	colorPoints       = 30
	subCategoryPoints = 30
	duplicateMinScore = 70
)

// FindDuplicates scores every existing wardrobe item against a detected
// item and returns the candidates scoring at or above the duplicate
// threshold, highest score first.
func FindDuplicates(item models.DetectedItem, existing []models.WardrobeItem) []models.DuplicateMatch {
	detectedCategory := NormalizeCategory(item.Category)
	detectedSub := Fold(item.SubCategory)
	detectedColors := make(map[string]bool, len(item.Colors))
	for _, color := range item.Colors {
		detectedColors[Fold(color)] = true
	}

	matches := make([]models.DuplicateMatch, 0)
	for _, candidate := range existing {
		score := 0
		if NormalizeCategory(candidate.Category) == detectedCategory {
			score += categoryPoints
		}
		if colorsOverlap(detectedColors, candidate.Colors) {
			score += colorPoints
		}
		if detectedSub != "" && Fold(candidate.SubCategory) == detectedSub {
			score += subCategoryPoints
		}
		if score >= duplicateMinScore {
			matches = append(matches, models.DuplicateMatch{
				ItemID: candidate.ID,
				Name:   candidate.Name,
				Score:  score,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}

// BestDuplicate returns the highest-scoring duplicate candidate, or nil
// when none reach the threshold.
func BestDuplicate(item models.DetectedItem, existing []models.WardrobeItem) *models.DuplicateMatch {
	matches := FindDuplicates(item, existing)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

func colorsOverlap(detected map[string]bool, candidate []string) bool {
	if len(detected) == 0 {
		return false
	}
	for _, color := range candidate {
		if detected[Fold(color)] {
			return true
		}
	}
	return false
}
