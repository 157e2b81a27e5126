package gateway

import (
	"context"
	"fmt"

	"github.com/piresc/kasbot/internal/pkg/models"
	"google.golang.org/genai"
)

// GeminiGW extracts structured transaction data from receipt images
// using the Gemini vision models
type GeminiGW struct {
	client *genai.Client
	model  string
}

// NewGeminiGW creates a new vision gateway. The API key is read from
// the environment by the genai client.
func NewGeminiGW(ctx context.Context, cfg *models.Config) (*GeminiGW, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiGW{
		client: client,
		model:  cfg.AI.VisionModel,
	}, nil
}

// ExtractFromImage sends the image with the extraction prompt and
// returns the raw model output
func (g *GeminiGW) ExtractFromImage(ctx context.Context, image []byte, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{
					InlineData: &genai.Blob{
						MIMEType: "image/jpeg",
						Data:     image,
					},
				},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("vision generate content failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from vision model")
	}

	return text, nil
}
