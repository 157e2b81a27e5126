package extraction

import (
	"context"
	"errors"

	"github.com/piresc/kasbot/internal/pkg/models"
)

// ErrNoTransaction is returned when no financial event could be
// detected in the input by any strategy.
var ErrNoTransaction = errors.New("no transaction found")

// Extractor defines the interface for turning raw chat input into
// transaction candidates
type Extractor interface {
	ExtractText(ctx context.Context, text, defaultCurrency string) ([]models.ParsedTransaction, error)
	ExtractVoice(ctx context.Context, audio []byte, defaultCurrency string) ([]models.ParsedTransaction, error)
	ExtractPhoto(ctx context.Context, image []byte, defaultCurrency string) ([]models.ParsedTransaction, error)
}

// ChatMessage is one role-tagged message of a model prompt
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelClient defines the interface for a text completion model
type ModelClient interface {
	Complete(ctx context.Context, model string, messages []ChatMessage) (string, error)
}

// Transcriber defines the interface for speech to text
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// VisionClient defines the interface for structured extraction from images
type VisionClient interface {
	ExtractFromImage(ctx context.Context, image []byte, prompt string) (string, error)
}

// Registrar stores freshly extracted candidates in the pending store
// before they are returned to the caller
type Registrar interface {
	StorePending(ctx context.Context, tx models.ParsedTransaction) error
}
