package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piresc/kasbot/internal/pkg/constants"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/extraction"
)

func highConfidenceCandidate() models.ParsedTransaction {
	return models.ParsedTransaction{
		Amount:      50,
		Currency:    "USD",
		Type:        models.TransactionTypeExpense,
		Description: "groceries",
		Category:    "Food & Dining",
		Confidence:  0.9,
	}
}

func TestHandleUpdate_UnknownSenderGetsLinkPrompt(t *testing.T) {
	tb := newTestBot(t)

	err := tb.uc.HandleUpdate(context.Background(), textUpdate(100, 555, "Spent $50 on groceries"))
	require.NoError(t, err)

	msg := tb.telegram.lastMessage(t)
	assert.Equal(t, msgLinkAccount, msg.text)
	assert.Nil(t, msg.keyboard)
}

func TestHandleUpdate_HighConfidenceGetsConfirmKeyboard(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	tb.seedContext(100, models.ChatTypePrivate, "user-1", models.RoleOwner)
	tb.extractor.candidates = []models.ParsedTransaction{highConfidenceCandidate()}

	err := tb.uc.HandleUpdate(context.Background(), textUpdate(100, 555, "Spent $50 on groceries"))
	require.NoError(t, err)

	msg := tb.telegram.lastMessage(t)
	require.NotNil(t, msg.keyboard, "high-confidence candidate must get the confirmation keyboard")
	require.Len(t, msg.keyboard.Rows, 1)
	require.Len(t, msg.keyboard.Rows[0], 3)
	assert.Contains(t, msg.keyboard.Rows[0][0].CallbackData, constants.CallbackConfirm)
	assert.Contains(t, msg.text, "USD 50.00")

	// The stored pending entry carries the resolved context.
	stored, err := tb.pending.GetPending(context.Background(), "temp-1")
	require.NoError(t, err)
	assert.Equal(t, "ctx-100", stored.ContextID)
}

func TestHandleUpdate_BorderlineConfidenceNeverShowsKeyboard(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	tb.seedContext(100, models.ChatTypePrivate, "user-1", models.RoleOwner)

	candidate := highConfidenceCandidate()
	candidate.Confidence = models.MinConfidence // exactly at the gate
	tb.extractor.candidates = []models.ParsedTransaction{candidate}

	err := tb.uc.HandleUpdate(context.Background(), textUpdate(100, 555, "spent 50"))
	require.NoError(t, err)

	msg := tb.telegram.lastMessage(t)
	assert.Nil(t, msg.keyboard)
	assert.Equal(t, msgLowConfidence, msg.text)
}

func TestHandleUpdate_MixedConfidenceOnlyConfidentOffered(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	tb.seedContext(100, models.ChatTypePrivate, "user-1", models.RoleOwner)

	weak := highConfidenceCandidate()
	weak.Confidence = 0.4
	weak.Description = "unclear scribble"
	tb.extractor.candidates = []models.ParsedTransaction{highConfidenceCandidate(), weak}

	err := tb.uc.HandleUpdate(context.Background(), textUpdate(100, 555, "groceries and something"))
	require.NoError(t, err)

	// The confident candidate gets the single-confirmation keyboard;
	// the weak one never reaches a batch listing.
	require.Len(t, tb.telegram.sent, 1)
	msg := tb.telegram.lastMessage(t)
	require.NotNil(t, msg.keyboard)
	assert.Contains(t, msg.keyboard.Rows[0][0].CallbackData, constants.CallbackConfirm)
	assert.NotContains(t, msg.text, "unclear scribble")
	assert.Empty(t, tb.pending.batches)
}

func TestHandleUpdate_AllWeakCandidatesNeverBatched(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	tb.seedContext(100, models.ChatTypePrivate, "user-1", models.RoleOwner)

	first := highConfidenceCandidate()
	first.Confidence = 0.5
	second := highConfidenceCandidate()
	second.Confidence = 0.4
	tb.extractor.candidates = []models.ParsedTransaction{first, second}

	err := tb.uc.HandleUpdate(context.Background(), textUpdate(100, 555, "two vague things"))
	require.NoError(t, err)

	msg := tb.telegram.lastMessage(t)
	assert.Nil(t, msg.keyboard)
	assert.Equal(t, msgLowConfidence, msg.text)
	assert.Empty(t, tb.pending.batches)
}

func TestHandleUpdate_NeedsReviewCandidate(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	tb.seedContext(100, models.ChatTypePrivate, "user-1", models.RoleOwner)

	candidate := models.ParsedTransaction{
		Currency:    "USD",
		Type:        models.TransactionTypeExpense,
		Description: "Receipt (details unreadable)",
		Confidence:  0.3,
		NeedsReview: true,
	}
	tb.extractor.candidates = []models.ParsedTransaction{candidate}

	update := textUpdate(100, 555, "")
	update.Message.Photo = []models.PhotoSize{{FileID: "photo-1", Width: 90, Height: 90}}
	tb.telegram.downloads["photo-1"] = []byte("jpeg")

	err := tb.uc.HandleUpdate(context.Background(), update)
	require.NoError(t, err)

	assert.Equal(t, msgNeedsReview, tb.telegram.lastMessage(t).text)
}

func TestHandleUpdate_NoTransactionFound(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	tb.seedContext(100, models.ChatTypePrivate, "user-1", models.RoleOwner)
	tb.extractor.err = extraction.ErrNoTransaction

	err := tb.uc.HandleUpdate(context.Background(), textUpdate(100, 555, "good morning"))
	require.NoError(t, err)

	assert.Equal(t, msgNoTransaction, tb.telegram.lastMessage(t).text)
}

func TestHandleUpdate_ConversionAppliedOnce(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	tb.seedContext(100, models.ChatTypePrivate, "user-1", models.RoleOwner)

	candidate := highConfidenceCandidate()
	candidate.Currency = "BRL"
	candidate.Amount = 100
	tb.extractor.candidates = []models.ParsedTransaction{candidate}
	tb.uc.converter = &fakeConverter{rates: map[string]float64{"BRLUSD": 0.2}}

	err := tb.uc.HandleUpdate(context.Background(), textUpdate(100, 555, "Paid R$100"))
	require.NoError(t, err)

	stored, err := tb.pending.GetPending(context.Background(), "temp-1")
	require.NoError(t, err)
	assert.Equal(t, 20.0, stored.Amount)
	assert.Equal(t, "USD", stored.Currency)
	assert.Equal(t, "BRL", stored.OriginalCurrency)
	assert.Equal(t, 100.0, stored.OriginalAmount)
	assert.Equal(t, 0.2, stored.ExchangeRate)
}

func TestHandleUpdate_AdminsOnlyPolicyBlocksMembers(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	c := tb.seedContext(-200, models.ChatTypeGroup, "user-1", models.RoleMember)
	c.Policy = models.PolicyAdmins
	tb.extractor.candidates = []models.ParsedTransaction{highConfidenceCandidate()}

	err := tb.uc.HandleUpdate(context.Background(), groupTextUpdate(-200, 555, "Spent $50"))
	require.NoError(t, err)

	assert.Equal(t, msgNotAllowed, tb.telegram.lastMessage(t).text)
	assert.Empty(t, tb.pending.pendings, "refused sender must not produce pending state")
}

func TestHandleUpdate_AdminsOnlyPolicyAllowsAdmins(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	c := tb.seedContext(-200, models.ChatTypeGroup, "user-1", models.RoleAdmin)
	c.Policy = models.PolicyAdmins
	tb.extractor.candidates = []models.ParsedTransaction{highConfidenceCandidate()}

	err := tb.uc.HandleUpdate(context.Background(), groupTextUpdate(-200, 555, "Spent $50"))
	require.NoError(t, err)

	assert.NotNil(t, tb.telegram.lastMessage(t).keyboard)
}

func TestHandleUpdate_CommandsAnswered(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")

	tests := []struct {
		command  string
		expected string
	}{
		{"/start", msgWelcome},
		{"/help", msgHelp},
		{"/help@kasbot", msgHelp},
		{"/cancel", msgSetupCancelled},
		{"/setup", msgSetupGroupOnly},
		{"/unknown", msgHelp},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			err := tb.uc.HandleUpdate(context.Background(), textUpdate(100, 555, tt.command))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tb.telegram.lastMessage(t).text)
		})
	}
}

func TestHandleUpdate_PrivateChatCreatesPersonalContext(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	tb.extractor.candidates = []models.ParsedTransaction{highConfidenceCandidate()}

	err := tb.uc.HandleUpdate(context.Background(), textUpdate(100, 555, "Spent $50 on groceries"))
	require.NoError(t, err)

	// A personal context was provisioned, mapped, and owned.
	c, err := tb.contexts.FindPersonalContext(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.ContextTypePersonal, c.Type)
	assert.Equal(t, "USD", c.Currency)

	mapping, err := tb.contexts.GetMapping(context.Background(), 100, models.ChatTypePrivate)
	require.NoError(t, err)
	assert.Equal(t, c.ID, mapping.ContextID)
}

func TestHandleUpdate_UnmappedGroupGetsDefaultContext(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	tb.extractor.candidates = []models.ParsedTransaction{highConfidenceCandidate()}

	err := tb.uc.HandleUpdate(context.Background(), groupTextUpdate(-300, 555, "Spent $50 on groceries"))
	require.NoError(t, err)

	mapping, err := tb.contexts.GetMapping(context.Background(), -300, models.ChatTypeGroup)
	require.NoError(t, err)

	c, err := tb.contexts.GetContext(context.Background(), mapping.ContextID)
	require.NoError(t, err)
	assert.Equal(t, "Trip Crew", c.Name, "default group context takes the chat title")
	assert.Equal(t, models.ContextTypeGroup, c.Type)

	require.Len(t, tb.events.contexts, 1)
	assert.Equal(t, c.ID, tb.events.contexts[0].ContextID)
}

func TestHandleUpdate_ResolutionFailureFallsBackToPersonal(t *testing.T) {
	tb := newTestBot(t)
	user := tb.seedUser(555, "user-1")

	// Personal context exists even though the mapping lookup fails.
	personal := &models.Context{ID: "ctx-p", Name: "Alice", Type: models.ContextTypePersonal, Currency: "USD", Policy: models.PolicyEveryone}
	tb.contexts.contexts[personal.ID] = personal
	tb.contexts.memberships[membershipKey{personal.ID, user.ID}] = &models.Membership{ContextID: personal.ID, UserID: user.ID, Role: models.RoleOwner, IsActive: true}

	tb.extractor.candidates = []models.ParsedTransaction{highConfidenceCandidate()}

	// Mapping lookups and writes fail; the personal lookup still works.
	tb.contexts.failAll = true

	err := tb.uc.HandleUpdate(context.Background(), groupTextUpdate(-400, 555, "Spent $50"))
	require.NoError(t, err)

	stored, err := tb.pending.GetPending(context.Background(), "temp-1")
	require.NoError(t, err)
	assert.Equal(t, "ctx-p", stored.ContextID, "transactions must fall back to the personal context")
}

func TestHandleUpdate_VoiceMessage(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	tb.seedContext(100, models.ChatTypePrivate, "user-1", models.RoleOwner)
	tb.extractor.candidates = []models.ParsedTransaction{highConfidenceCandidate()}
	tb.telegram.downloads["voice-1"] = []byte("ogg")

	update := textUpdate(100, 555, "")
	update.Message.Voice = &models.Voice{FileID: "voice-1", Duration: 3}

	err := tb.uc.HandleUpdate(context.Background(), update)
	require.NoError(t, err)

	assert.NotNil(t, tb.telegram.lastMessage(t).keyboard)
}

func TestHandleUpdate_ProcessingErrorSendsApology(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")
	tb.seedContext(100, models.ChatTypePrivate, "user-1", models.RoleOwner)
	tb.extractor.err = context.DeadlineExceeded

	err := tb.uc.HandleUpdate(context.Background(), textUpdate(100, 555, "Spent $50"))
	require.NoError(t, err, "webhook must swallow processing errors")

	assert.Equal(t, msgApology, tb.telegram.lastMessage(t).text)
}

func TestHandleUpdate_BotAddedToGroupStartsSetup(t *testing.T) {
	tb := newTestBot(t)
	tb.seedUser(555, "user-1")

	update := groupTextUpdate(-500, 555, "")
	update.Message.NewChatMembers = []models.ChatUser{{ID: 999, IsBot: true, Username: "kasbot"}}

	err := tb.uc.HandleUpdate(context.Background(), update)
	require.NoError(t, err)

	session, err := tb.pending.GetSession(context.Background(), -500)
	require.NoError(t, err)
	assert.Equal(t, models.SetupStepType, session.Step)
	assert.NotNil(t, tb.telegram.lastMessage(t).keyboard)
}

func TestHandleUpdate_BotAddedByUnknownUserGetsLinkPrompt(t *testing.T) {
	tb := newTestBot(t)

	update := groupTextUpdate(-500, 555, "")
	update.Message.NewChatMembers = []models.ChatUser{{ID: 999, IsBot: true, Username: "kasbot"}}

	err := tb.uc.HandleUpdate(context.Background(), update)
	require.NoError(t, err)

	msg := tb.telegram.lastMessage(t)
	assert.Equal(t, msgLinkAccount, msg.text)
	assert.Nil(t, msg.keyboard)
	assert.Empty(t, tb.pending.sessions, "onboarding must not start without a linked owner")
}

func TestHandleUpdate_OtherBotJoiningIgnored(t *testing.T) {
	tb := newTestBot(t)

	update := groupTextUpdate(-500, 555, "")
	update.Message.From = &models.ChatUser{ID: 777, IsBot: true}
	update.Message.NewChatMembers = []models.ChatUser{{ID: 777, IsBot: true, Username: "someotherbot"}}

	err := tb.uc.HandleUpdate(context.Background(), update)
	require.NoError(t, err)

	assert.Empty(t, tb.telegram.sent)
	assert.Empty(t, tb.pending.sessions)
}
