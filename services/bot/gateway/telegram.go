package gateway

import (
	"context"
	"fmt"
	"net/url"
	"time"

	httpclient "github.com/piresc/kasbot/internal/pkg/http"
	"github.com/piresc/kasbot/internal/pkg/models"
)

// TelegramGWImpl sends messages and keyboards through the Bot API
type TelegramGWImpl struct {
	client *httpclient.Client
	token  string
}

// NewTelegramGW creates a new Telegram gateway
func NewTelegramGW(cfg *models.Config) *TelegramGWImpl {
	return &TelegramGWImpl{
		client: httpclient.NewClient(cfg.Telegram.APIBaseURL, 10*time.Second),
		token:  cfg.Telegram.BotToken,
	}
}

type sendMessageRequest struct {
	ChatID      int64                  `json:"chat_id"`
	Text        string                 `json:"text"`
	ParseMode   string                 `json:"parse_mode,omitempty"`
	ReplyMarkup *models.InlineKeyboard `json:"reply_markup,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// SendMessage sends a plain text message to a chat
func (g *TelegramGWImpl) SendMessage(ctx context.Context, chatID int64, text string) error {
	return g.send(ctx, sendMessageRequest{ChatID: chatID, Text: text})
}

// SendMessageWithKeyboard sends a message with inline reply controls
func (g *TelegramGWImpl) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard models.InlineKeyboard) error {
	return g.send(ctx, sendMessageRequest{ChatID: chatID, Text: text, ReplyMarkup: &keyboard})
}

func (g *TelegramGWImpl) send(ctx context.Context, req sendMessageRequest) error {
	var resp apiResponse
	err := g.client.PostJSON(ctx, g.methodPath("sendMessage"), nil, req, &resp)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("send message rejected: %s", resp.Description)
	}
	return nil
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

// AnswerCallback acknowledges an inline button interaction
func (g *TelegramGWImpl) AnswerCallback(ctx context.Context, callbackID string, text string) error {
	var resp apiResponse
	err := g.client.PostJSON(ctx, g.methodPath("answerCallbackQuery"), nil,
		answerCallbackRequest{CallbackQueryID: callbackID, Text: text}, &resp)
	if err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

type getFileResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		FilePath string `json:"file_path"`
	} `json:"result"`
}

// DownloadFile fetches the bytes of an uploaded voice note or photo
func (g *TelegramGWImpl) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	var resp getFileResponse
	err := g.client.GetJSON(ctx, g.methodPath("getFile")+"?file_id="+url.QueryEscape(fileID), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}
	if !resp.OK || resp.Result.FilePath == "" {
		return nil, fmt.Errorf("file %s not available", fileID)
	}

	data, err := g.client.GetBytes(ctx, "/file/bot"+g.token+"/"+resp.Result.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	return data, nil
}

func (g *TelegramGWImpl) methodPath(method string) string {
	return "/bot" + g.token + "/" + method
}
