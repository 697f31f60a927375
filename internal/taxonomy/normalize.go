package taxonomy

import "strings"

var (
	categoryKeyByFold = buildCategoryIndex()
	paletteByFold     = buildPaletteIndex()
)

func buildCategoryIndex() map[string]string {
	index := map[string]string{
		Fold("Tops"):        CategoryTops,
		Fold("Bottoms"):     CategoryBottoms,
		Fold("Outerwear"):   CategoryOuterwear,
		Fold("Shoes"):       CategoryShoes,
		Fold("Accessories"): CategoryAccessories,
		Fold("Dresses"):     CategoryDresses,
		// No dedicated bucket for activewear, file it under tops.
		Fold("Activewear"): CategoryTops,
	}
	return index
}

func buildPaletteIndex() map[string]string {
	index := make(map[string]string, len(ColorPalette))
	for _, color := range ColorPalette {
		index[Fold(color)] = color
	}
	return index
}

// Fold lowercases a string and strips spaces, hyphens and underscores so
// that "T-Shirt", "t shirt" and "tshirt" compare equal.
func Fold(s string) string {
	out := strings.Builder{}
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '-' || r == '_' {
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// IsValidDetectionCategory reports whether the vision model's category
// value is one of the allowed Title-Case detection categories.
func IsValidDetectionCategory(category string) bool {
	for _, c := range DetectionCategories {
		if c == category {
			return true
		}
	}
	return false
}

// NormalizeCategory maps a detector category to its canonical lowercase
// key. Unknown or empty input defaults to tops.
func NormalizeCategory(category string) string {
	if key, ok := categoryKeyByFold[Fold(category)]; ok {
		return key
	}
	return CategoryTops
}

// NormalizeColors maps free-text color names onto the canonical palette,
// proper-cased and deduplicated. Colors with no palette match are dropped,
// so the result may be shorter than the input, including empty.
func NormalizeColors(colors []string) []string {
	out := make([]string, 0, len(colors))
	seen := make(map[string]bool, len(colors))
	for _, color := range colors {
		canonical, ok := paletteByFold[Fold(color)]
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}

// NormalizeSubCategory resolves a detected sub-category to the canonical
// spelling within the given category key, comparing case- and
// separator-insensitively. When nothing matches, the detected string is
// returned unchanged.
func NormalizeSubCategory(subCategory, categoryKey string) string {
	folded := Fold(subCategory)
	if folded == "" {
		return subCategory
	}
	for _, canonical := range SubCategories[categoryKey] {
		if Fold(canonical) == folded {
			return canonical
		}
	}
	return subCategory
}
