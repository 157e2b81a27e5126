package bot

import (
	"context"

	"github.com/piresc/kasbot/internal/pkg/models"
)

// TelegramGW defines the interface for the outbound chat API
type TelegramGW interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard models.InlineKeyboard) error
	AnswerCallback(ctx context.Context, callbackID string, text string) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// EventsGW defines the interface for publishing domain events
type EventsGW interface {
	TransactionConfirmed(event models.TransactionConfirmedEvent) error
	BatchConfirmed(event models.BatchConfirmedEvent) error
	ContextCreated(event models.ContextCreatedEvent) error
}
