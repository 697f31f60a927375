package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Model responses rarely arrive as clean JSON. They come wrapped in prose,
// markdown fences or trailing commentary, so parsing tries the raw text
// first and falls back to bracket matching on the outermost delimiters.
// Keeping this in one place lets a structured-output API replace it later
// without touching any validation logic.

// ExtractJSONArray locates a JSON array inside model output text and
// unmarshals it into target.
func ExtractJSONArray(content string, target interface{}) error {
	return extractJSON(content, target, "[", "]")
}

// ExtractJSONObject locates a JSON object inside model output text and
// unmarshals it into target.
func ExtractJSONObject(content string, target interface{}) error {
	return extractJSON(content, target, "{", "}")
}

func extractJSON(content string, target interface{}, opening, closing string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("empty model response")
	}

	if err := json.Unmarshal([]byte(content), target); err == nil {
		return nil
	}

	start := strings.Index(content, opening)
	end := strings.LastIndex(content, closing) + 1
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON found in model response")
	}

	if err := json.Unmarshal([]byte(content[start:end]), target); err != nil {
		return fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return nil
}
