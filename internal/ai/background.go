package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultRemovalBaseURL = "https://generativelanguage.googleapis.com"
	defaultRemovalModel   = "gemini-2.0-flash-exp"
)

const removalPrompt = `Isolate the single clothing item in this photo on a plain white background. Remove all background elements, hangers, surfaces and other items. Keep the garment's shape, colors and texture exactly as photographed. Return only the edited image.`

// BackgroundRemover calls an image-generation model that accepts an
// inline photo and returns the edited image bytes in its response parts.
type BackgroundRemover struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewBackgroundRemover creates a remover for the given API key. An empty
// key yields a remover that reports itself unavailable; callers are
// expected to check Available before invoking removal.
func NewBackgroundRemover(apiKey string) *BackgroundRemover {
	return &BackgroundRemover{
		apiKey:  apiKey,
		baseURL: defaultRemovalBaseURL,
		model:   defaultRemovalModel,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// WithModel overrides the removal model name.
func (r *BackgroundRemover) WithModel(model string) *BackgroundRemover {
	if model != "" {
		r.model = model
	}
	return r
}

// WithBaseURL overrides the API base URL, which tests rely on.
func (r *BackgroundRemover) WithBaseURL(baseURL string) *BackgroundRemover {
	if baseURL != "" {
		r.baseURL = strings.TrimRight(baseURL, "/")
	}
	return r
}

// Available reports whether the remover is configured to make calls.
func (r *BackgroundRemover) Available() bool {
	return r.apiKey != ""
}

type generatePart struct {
	Text       string           `json:"text,omitempty"`
	InlineData *inlineImageData `json:"inlineData,omitempty"`
}

type inlineImageData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateContentRequest struct {
	Contents []struct {
		Parts []generatePart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseModalities []string `json:"responseModalities"`
	} `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// RemoveBackground sends the photo to the image model and returns the
// edited image bytes. The response must carry at least one inline image
// part; a text-only response is an error.
func (r *BackgroundRemover) RemoveBackground(ctx context.Context, imageData []byte, mimeType string) ([]byte, error) {
	if !r.Available() {
		return nil, fmt.Errorf("background removal service not configured")
	}
	if len(imageData) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	reqBody := generateContentRequest{}
	reqBody.Contents = append(reqBody.Contents, struct {
		Parts []generatePart `json:"parts"`
	}{
		Parts: []generatePart{
			{Text: removalPrompt},
			{InlineData: &inlineImageData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(imageData),
			}},
		},
	})
	reqBody.GenerationConfig.ResponseModalities = []string{"TEXT", "IMAGE"}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode removal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", r.baseURL, r.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build removal request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", r.apiKey)

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("removal request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read removal response: %w", err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("request_bytes", len(payload)).
		Int("response_bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("Background removal call completed")

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("removal API returned status %d: %s", resp.StatusCode, truncateForLog(string(body)))
	}

	return extractInlineImage(body)
}

// extractInlineImage pulls the first inline image part out of a
// generateContent response body.
func extractInlineImage(body []byte) ([]byte, error) {
	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode removal response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("removal response contained no candidates")
	}

	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.InlineData == nil || part.InlineData.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode inline image data: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("removal response contained no image part")
}
