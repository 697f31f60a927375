package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/yassinema02/vestiaire-sub000/pkg/models"
)

// ResaleListing is the AI-generated listing copy for selling an item.
type ResaleListing struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	SuggestedPrice string   `json:"suggested_price"`
	Condition      string   `json:"condition"`
	Tags           []string `json:"tags"`
}

// ListingGenerator writes resale listing copy for wardrobe items.
type ListingGenerator struct {
	client *openai.Client
	model  string
}

// NewListingGenerator creates a listing generator backed by the OpenAI API.
func NewListingGenerator(apiKey string) *ListingGenerator {
	return &ListingGenerator{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
	}
}

// GenerateListing produces resale listing copy for one wardrobe item.
func (g *ListingGenerator) GenerateListing(ctx context.Context, item *models.WardrobeItem) (*ResaleListing, error) {
	colors := strings.Join(item.Colors, ", ")
	if colors == "" {
		colors = "not specified"
	}
	material := item.Material
	if material == "" {
		material = "not specified"
	}
	wearNote := fmt.Sprintf("worn %d times", item.WearCount)
	if item.WearCount == 0 {
		wearNote = "never worn"
	}

	prompt := fmt.Sprintf(`You are an expert secondhand fashion seller. Write a resale listing for the following wardrobe item:

Name: %s
Category: %s
Sub-category: %s
Colors: %s
Material: %s
Usage: %s

Write an appealing but honest listing. Respond ONLY with a JSON object in this exact format, no additional text:

{
  "title": "Short catchy listing title",
  "description": "2-3 sentence description highlighting condition and style",
  "suggested_price": "A realistic secondhand price range in EUR, e.g. 15-25",
  "condition": "One of: Like new, Very good, Good, Fair",
  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]
}`, item.Name, item.Category, item.SubCategory, colors, material, wearNote)

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   1000,
			Temperature: 0.7,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate listing: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	var listing ResaleListing
	if err := ExtractJSONObject(resp.Choices[0].Message.Content, &listing); err != nil {
		return nil, fmt.Errorf("unparseable listing response: %w", err)
	}
	if listing.Title == "" {
		listing.Title = item.Name
	}
	return &listing, nil
}
