package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/bot/handler/http"
)

// Handler coordinates the protocol handlers for the bot service
type Handler struct {
	webhookHandler *http.WebhookHandler
	cfg            *models.Config
}

// NewHandler creates and initializes all handlers
func NewHandler(
	webhookHandler *http.WebhookHandler,
	cfg *models.Config,
) *Handler {
	return &Handler{
		webhookHandler: webhookHandler,
		cfg:            cfg,
	}
}

// RegisterRoutes registers all HTTP routes for the bot service
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhook/:token", h.webhookHandler.HandleUpdate)
}
