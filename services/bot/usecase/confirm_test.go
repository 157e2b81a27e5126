package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piresc/kasbot/internal/pkg/constants"
	"github.com/piresc/kasbot/internal/pkg/models"
)

func seedPendingCandidate(tb *testBot, tempID string) {
	tb.pending.pendings[tempID] = models.ParsedTransaction{
		TempID:      tempID,
		ContextID:   "ctx-1",
		Amount:      50,
		Currency:    "USD",
		Type:        models.TransactionTypeExpense,
		Description: "groceries",
		Category:    "Food & Dining",
		Confidence:  0.9,
	}
}

func TestConfirmCallback_PersistsAndCleansUp(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	seedPendingCandidate(tb, "temp-1")

	err := tb.uc.HandleUpdate(context.Background(), callbackUpdate(100, 555, constants.CallbackConfirm+"temp-1"))
	require.NoError(t, err)

	// Callback acknowledged.
	assert.Equal(t, []string{"cb-1"}, tb.telegram.acked)

	// Durable record written with the pending values.
	require.Len(t, tb.txs.inserted, 1)
	saved := tb.txs.inserted[0]
	assert.Equal(t, "ctx-1", saved.ContextID)
	assert.Equal(t, "user-1", saved.UserID)
	assert.Equal(t, 50.0, saved.Amount)
	assert.False(t, saved.Date.IsZero(), "missing candidate date defaults to now")

	// Event published and ephemeral state removed.
	require.Len(t, tb.events.confirmed, 1)
	assert.Equal(t, saved.ID, tb.events.confirmed[0].TransactionID)
	assert.Empty(t, tb.pending.pendings)

	assert.Contains(t, tb.telegram.lastMessage(t).text, "Saved:")
}

func TestConfirmCallback_ExpiredEntry(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")

	err := tb.uc.HandleUpdate(context.Background(), callbackUpdate(100, 555, constants.CallbackConfirm+"gone"))
	require.NoError(t, err)

	assert.Equal(t, msgExpired, tb.telegram.lastMessage(t).text)
	assert.Empty(t, tb.txs.inserted)
	assert.Empty(t, tb.events.confirmed)
}

func TestEditCallback_DiscardsAndPrompts(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	seedPendingCandidate(tb, "temp-1")

	err := tb.uc.HandleUpdate(context.Background(), callbackUpdate(100, 555, constants.CallbackEdit+"temp-1"))
	require.NoError(t, err)

	assert.Empty(t, tb.pending.pendings)
	assert.Empty(t, tb.txs.inserted, "editing must not persist anything")
	assert.Equal(t, msgEditPrompt, tb.telegram.lastMessage(t).text)
}

func TestCancelCallback_Discards(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	seedPendingCandidate(tb, "temp-1")

	err := tb.uc.HandleUpdate(context.Background(), callbackUpdate(100, 555, constants.CallbackCancel+"temp-1"))
	require.NoError(t, err)

	assert.Empty(t, tb.pending.pendings)
	assert.Equal(t, msgCancelled, tb.telegram.lastMessage(t).text)
}

func TestUnknownCallbackIgnored(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")

	err := tb.uc.HandleUpdate(context.Background(), callbackUpdate(100, 555, "bogus:data"))
	require.NoError(t, err)

	// Acknowledged but nothing else happened.
	assert.Equal(t, []string{"cb-1"}, tb.telegram.acked)
	assert.Empty(t, tb.telegram.sent)
}
