package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piresc/kasbot/internal/pkg/models"
)

type fakeBotUC struct {
	updates []*models.Update
	err     error
}

func (f *fakeBotUC) HandleUpdate(_ context.Context, update *models.Update) error {
	f.updates = append(f.updates, update)
	return f.err
}

func performWebhook(handler *WebhookHandler, token, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhook/"+token, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetPath("/webhook/:token")
	c.SetParamNames("token")
	c.SetParamValues(token)

	_ = handler.HandleUpdate(c)
	return rec
}

func TestWebhook_ValidUpdate(t *testing.T) {
	uc := &fakeBotUC{}
	handler := NewWebhookHandler(uc, "secret")

	body := `{"update_id": 7, "message": {"message_id": 1, "chat": {"id": 100, "type": "private"}, "text": "Spent $50"}}`
	rec := performWebhook(handler, "secret", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, uc.updates, 1)
	assert.Equal(t, int64(7), uc.updates[0].UpdateID)
	assert.Equal(t, "Spent $50", uc.updates[0].Message.Text)
}

func TestWebhook_InvalidToken(t *testing.T) {
	uc := &fakeBotUC{}
	handler := NewWebhookHandler(uc, "secret")

	rec := performWebhook(handler, "wrong", `{"update_id": 7}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, uc.updates, "updates with a bad token must not be processed")
}

func TestWebhook_MalformedBody(t *testing.T) {
	uc := &fakeBotUC{}
	handler := NewWebhookHandler(uc, "secret")

	rec := performWebhook(handler, "secret", `{"update_id": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, uc.updates)
}

func TestWebhook_ProcessingErrorStillAnswers200(t *testing.T) {
	uc := &fakeBotUC{err: errors.New("boom")}
	handler := NewWebhookHandler(uc, "secret")

	rec := performWebhook(handler, "secret", `{"update_id": 7}`)

	assert.Equal(t, http.StatusOK, rec.Code, "decodable updates are never redelivered")
}
