package gateway

import (
	"context"
	"fmt"
	"time"

	httpclient "github.com/piresc/kasbot/internal/pkg/http"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/extraction"
)

// OpenAIGW talks to an OpenAI-compatible API for chat completions and
// audio transcription
type OpenAIGW struct {
	client *httpclient.Client
	apiKey string
}

// NewOpenAIGW creates a new model gateway
func NewOpenAIGW(cfg *models.Config) *OpenAIGW {
	timeout := time.Duration(cfg.AI.MediaTimeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIGW{
		// The per-attempt context deadline is the effective timeout;
		// the client timeout is only a backstop.
		client: httpclient.NewClient(cfg.AI.BaseURL, timeout),
		apiKey: cfg.AI.APIKey,
	}
}

type chatCompletionRequest struct {
	Model       string                   `json:"model"`
	Messages    []extraction.ChatMessage `json:"messages"`
	Temperature float64                  `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a role-tagged prompt to the given model and returns
// the raw completion text
func (g *OpenAIGW) Complete(ctx context.Context, model string, messages []extraction.ChatMessage) (string, error) {
	req := chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.1,
	}

	var resp chatCompletionResponse
	err := g.client.PostJSON(ctx, "/chat/completions", g.headers(), req, &resp)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe converts a voice note to text
func (g *OpenAIGW) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var resp transcriptionResponse
	err := g.client.PostMultipart(ctx, "/audio/transcriptions", g.headers(),
		"file", "voice.ogg", audio,
		map[string]string{"model": "whisper-1"},
		&resp)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	return resp.Text, nil
}

func (g *OpenAIGW) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + g.apiKey,
	}
}
