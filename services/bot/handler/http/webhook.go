package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/piresc/kasbot/internal/pkg/logger"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/internal/utils"
	"github.com/piresc/kasbot/services/bot"
)

// WebhookHandler handles inbound bot platform updates
type WebhookHandler struct {
	botUC        bot.BotUC
	webhookToken string
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(botUC bot.BotUC, webhookToken string) *WebhookHandler {
	return &WebhookHandler{
		botUC:        botUC,
		webhookToken: webhookToken,
	}
}

// HandleUpdate receives one update from the platform. Any decodable
// update is answered 200 regardless of processing outcome, otherwise
// the platform keeps redelivering it.
func (h *WebhookHandler) HandleUpdate(c echo.Context) error {
	token := c.Param("token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookToken)) != 1 {
		logger.Warn("webhook called with invalid token",
			logger.String("token", utils.MaskToken(token)))
		return utils.UnauthorizedResponse(c, "invalid webhook token")
	}

	var update models.Update
	if err := c.Bind(&update); err != nil {
		logger.Warn("failed to decode webhook update", logger.Err(err))
		return utils.BadRequestResponse(c, "Invalid request payload")
	}

	if err := h.botUC.HandleUpdate(c.Request().Context(), &update); err != nil {
		// HandleUpdate swallows processing errors itself; anything
		// surfacing here is unexpected but must not trigger a redelivery.
		logger.Error("update handling returned error",
			logger.Int64("update_id", update.UpdateID), logger.Err(err))
	}

	return utils.SuccessResponse(c, http.StatusOK, "ok", nil)
}
