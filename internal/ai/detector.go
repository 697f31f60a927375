package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/yassinema02/vestiaire-sub000/internal/taxonomy"
	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// MaxItemsPerPhoto caps how many detected items a single photo may
// contribute, regardless of how many the model returns.
const MaxItemsPerPhoto = 5

// Defaults applied when the model omits a descriptive field.
const (
	defaultSubCategory = "Unknown"
	defaultStyle       = "Casual"
	defaultMaterial    = "Unknown"
	defaultPosition    = "Center"
	defaultConfidence  = 50
)

// Detector finds clothing items in wardrobe photos using a vision model.
type Detector struct {
	client *openai.Client
	model  string
	apiKey string
}

// NewDetector creates a detector backed by the OpenAI vision API.
func NewDetector(apiKey string) *Detector {
	return &Detector{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
		apiKey: apiKey,
	}
}

// Available reports whether the detector was configured with an API key.
func (d *Detector) Available() bool {
	return d.apiKey != ""
}

// rawDetectedItem mirrors the model's JSON output. Confidence is decoded
// loosely because models occasionally return it as a quoted string.
type rawDetectedItem struct {
	Category    string      `json:"category"`
	SubCategory string      `json:"sub_category"`
	Colors      []string    `json:"colors"`
	Style       string      `json:"style"`
	Material    string      `json:"material"`
	Position    string      `json:"position"`
	Confidence  interface{} `json:"confidence"`
}

const detectionPrompt = `You are a wardrobe cataloging assistant. Analyze the photo and identify every distinct clothing item, pair of shoes or accessory that is clearly visible.

For each item provide:
- "category": exactly one of Tops, Bottoms, Outerwear, Shoes, Accessories, Dresses, Activewear
- "sub_category": the specific garment type (e.g. "T-Shirt", "Jeans", "Sneakers")
- "colors": the dominant colors, most prominent first
- "style": a short style descriptor (e.g. "Casual", "Formal", "Sporty")
- "material": the apparent fabric or material
- "position": where the item sits in the photo (e.g. "Left", "Center", "Hanging on rack")
- "confidence": an integer 0-100 for how certain you are

RULES:
- Report at most 5 items per photo
- Skip items that are mostly cut off or heavily obscured
- Respond ONLY with a JSON array, no text before or after
- Always use double quotes in the JSON
- If no clothing items are visible, return: []

FORMAT:
[
  {
    "category": "Tops",
    "sub_category": "T-Shirt",
    "colors": ["Black", "White"],
    "style": "Casual",
    "material": "Cotton",
    "position": "Center",
    "confidence": 90
  }
]`

// DetectItems runs item detection for one photo URL and returns the
// validated item list. The returned items always satisfy the category,
// confidence and per-photo cap policies even when the model does not.
func (d *Detector) DetectItems(ctx context.Context, photoURL string, photoIndex int) ([]models.DetectedItem, error) {
	resp, err := d.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: d.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: detectionPrompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL: photoURL,
							},
						},
					},
				},
			},
			MaxTokens:   2000,
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("vision model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from vision model")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("empty response from vision model")
	}

	var raw []rawDetectedItem
	if err := ExtractJSONArray(content, &raw); err != nil {
		log.Warn().
			Int("photo_index", photoIndex).
			Str("content", truncateForLog(content)).
			Err(err).
			Msg("Unparseable detection response")
		return nil, fmt.Errorf("unparseable detection response: %w", err)
	}

	items := validateDetectedItems(raw, photoIndex, photoURL)
	log.Debug().
		Int("photo_index", photoIndex).
		Int("raw_items", len(raw)).
		Int("valid_items", len(items)).
		Msg("Photo detection completed")

	return items, nil
}

// validateDetectedItems applies the detection output policy to the
// model's raw item list: cap at MaxItemsPerPhoto, coerce unknown
// categories to the default, backfill missing descriptive fields and
// clamp confidence to 0-100.
func validateDetectedItems(raw []rawDetectedItem, photoIndex int, photoURL string) []models.DetectedItem {
	if len(raw) > MaxItemsPerPhoto {
		raw = raw[:MaxItemsPerPhoto]
	}

	items := make([]models.DetectedItem, 0, len(raw))
	for _, r := range raw {
		item := models.DetectedItem{
			Category:    strings.TrimSpace(r.Category),
			SubCategory: strings.TrimSpace(r.SubCategory),
			Colors:      r.Colors,
			Style:       strings.TrimSpace(r.Style),
			Material:    strings.TrimSpace(r.Material),
			Position:    strings.TrimSpace(r.Position),
			Confidence:  parseConfidence(r.Confidence),
			PhotoIndex:  photoIndex,
			PhotoURL:    photoURL,
		}
		if !taxonomy.IsValidDetectionCategory(item.Category) {
			item.Category = taxonomy.DefaultDetectionCategory
		}
		if item.SubCategory == "" {
			item.SubCategory = defaultSubCategory
		}
		if item.Style == "" {
			item.Style = defaultStyle
		}
		if item.Material == "" {
			item.Material = defaultMaterial
		}
		if item.Position == "" {
			item.Position = defaultPosition
		}
		if item.Colors == nil {
			item.Colors = []string{}
		}
		items = append(items, item)
	}
	return items
}

// parseConfidence accepts the numeric and quoted-string forms models
// produce. Anything unparseable falls back to the default, and the result
// is clamped to 0-100.
func parseConfidence(value interface{}) int {
	confidence := defaultConfidence
	switch v := value.(type) {
	case float64:
		confidence = int(v)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			confidence = int(parsed)
		}
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	return confidence
}

func truncateForLog(s string) string {
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}
