package ai

import (
	"testing"
)

func TestValidateDetectedItemsCapsAtFive(t *testing.T) {
	raw := make([]rawDetectedItem, 9)
	for i := range raw {
		raw[i] = rawDetectedItem{Category: "Tops", Confidence: float64(80)}
	}

	items := validateDetectedItems(raw, 0, "https://example.com/p.jpg")
	if len(items) != MaxItemsPerPhoto {
		t.Errorf("validateDetectedItems returned %d items, expected %d", len(items), MaxItemsPerPhoto)
	}
}

func TestValidateDetectedItemsCategoryCoercion(t *testing.T) {
	tests := []struct {
		category string
		expected string
	}{
		{"Tops", "Tops"},
		{"Shoes", "Shoes"},
		{"Activewear", "Activewear"},
		{"Swimwear", "Tops"},
		{"tops", "Tops"},
		{"", "Tops"},
		{"Furniture", "Tops"},
	}

	for _, test := range tests {
		items := validateDetectedItems([]rawDetectedItem{{Category: test.category}}, 0, "u")
		if len(items) != 1 {
			t.Fatalf("expected 1 item for category %q", test.category)
		}
		if items[0].Category != test.expected {
			t.Errorf("category %q validated to %q, expected %q", test.category, items[0].Category, test.expected)
		}
	}
}

func TestValidateDetectedItemsDefaults(t *testing.T) {
	items := validateDetectedItems([]rawDetectedItem{{Category: "Bottoms"}}, 3, "https://example.com/p.jpg")
	if len(items) != 1 {
		t.Fatal("expected 1 item")
	}
	item := items[0]
	if item.SubCategory == "" || item.Style == "" || item.Material == "" || item.Position == "" {
		t.Errorf("missing fields not backfilled: %+v", item)
	}
	if item.Colors == nil {
		t.Error("nil colors not replaced with empty slice")
	}
	if item.Confidence != defaultConfidence {
		t.Errorf("missing confidence = %d, expected %d", item.Confidence, defaultConfidence)
	}
	if item.PhotoIndex != 3 {
		t.Errorf("photo index = %d, expected 3", item.PhotoIndex)
	}
	if item.PhotoURL != "https://example.com/p.jpg" {
		t.Errorf("photo URL = %q, expected the source URL", item.PhotoURL)
	}
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		value    interface{}
		expected int
	}{
		{float64(85), 85},
		{float64(0), 0},
		{float64(100), 100},
		{float64(150), 100},
		{float64(-10), 0},
		{"90", 90},
		{" 42 ", 42},
		{"high", 50},
		{nil, 50},
		{true, 50},
		{[]interface{}{}, 50},
	}

	for _, test := range tests {
		result := parseConfidence(test.value)
		if result != test.expected {
			t.Errorf("parseConfidence(%v) = %d, expected %d", test.value, result, test.expected)
		}
	}
}
