package bot

import (
	"context"

	"github.com/piresc/kasbot/internal/pkg/models"
)

// BotUC defines the interface for the conversation orchestrator
type BotUC interface {
	HandleUpdate(ctx context.Context, update *models.Update) error
}
