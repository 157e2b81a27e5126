package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/piresc/kasbot/internal/pkg/logger"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/bot"
	"github.com/piresc/kasbot/services/currency"
)

// startSetup begins the onboarding wizard for a group chat. Any prior
// session for the chat is replaced.
func (uc *botUC) startSetup(ctx context.Context, chat models.Chat, userID string) error {
	session := &models.SetupSession{
		ChatID:    chat.ID,
		ChatTitle: chat.Title,
		UserID:    userID,
		Step:      models.SetupStepType,
		CreatedAt: time.Now(),
	}
	if err := uc.pendingRepo.StoreSession(ctx, session); err != nil {
		return err
	}
	text := "Let's set up this group! 🎉\nWhat kind of context is this?"
	return uc.telegramGW.SendMessageWithKeyboard(ctx, chat.ID, text, setupTypeKeyboard())
}

// handleSetupType records a tapped type and asks for confirmation
// before advancing. Taps outside the type step are ignored; they come
// from stale keyboards.
func (uc *botUC) handleSetupType(ctx context.Context, chatID int64, value string) error {
	session, err := uc.getSession(ctx, chatID)
	if err != nil || session == nil {
		return err
	}
	if session.Step != models.SetupStepType {
		return nil
	}
	t := models.ContextType(value)
	if t != models.ContextTypeFamily && t != models.ContextTypeGroup && t != models.ContextTypeBusiness {
		return nil
	}
	session.PendingType = t
	if err := uc.pendingRepo.StoreSession(ctx, session); err != nil {
		return err
	}
	text := fmt.Sprintf("Set this group up as a %s context?", t)
	return uc.telegramGW.SendMessageWithKeyboard(ctx, chatID, text, setupTypeConfirmKeyboard(t))
}

// handleSetupTypeConfirm locks in the confirmed type and advances to
// the name step
func (uc *botUC) handleSetupTypeConfirm(ctx context.Context, chatID int64, value string) error {
	session, err := uc.getSession(ctx, chatID)
	if err != nil || session == nil {
		return err
	}
	if session.Step != models.SetupStepType || string(session.PendingType) != value {
		return nil
	}
	session.Type = session.PendingType
	session.PendingType = ""
	session.Step = models.SetupStepName
	if err := uc.pendingRepo.StoreSession(ctx, session); err != nil {
		return err
	}
	return uc.telegramGW.SendMessage(ctx, chatID, "Great! What should I call this context? Send the name as a message.")
}

// handleSetupNameInput consumes a free-text message as the context
// name while the wizard waits on the name step
func (uc *botUC) handleSetupNameInput(ctx context.Context, msg *models.Message, session *models.SetupSession) error {
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, "The name can't be empty. What should I call this context?")
	}
	if len(name) > 100 {
		name = name[:100]
	}
	session.Name = name
	session.Step = models.SetupStepPermissions
	if err := uc.pendingRepo.StoreSession(ctx, session); err != nil {
		return err
	}
	text := fmt.Sprintf("\"%s\" it is. Who may record transactions here?", name)
	return uc.telegramGW.SendMessageWithKeyboard(ctx, msg.Chat.ID, text, setupPermKeyboard())
}

func (uc *botUC) handleSetupPermissions(ctx context.Context, chatID int64, value string) error {
	session, err := uc.getSession(ctx, chatID)
	if err != nil || session == nil {
		return err
	}
	if session.Step != models.SetupStepPermissions {
		return nil
	}
	policy := models.TransactionPolicy(value)
	if policy != models.PolicyEveryone && policy != models.PolicyAdmins {
		return nil
	}
	session.Permissions = policy
	session.Step = models.SetupStepCurrency
	if err := uc.pendingRepo.StoreSession(ctx, session); err != nil {
		return err
	}
	return uc.telegramGW.SendMessageWithKeyboard(ctx, chatID, "Last step: pick the default currency.", setupCurrencyKeyboard())
}

// handleSetupCurrency completes the wizard: the context, its chat
// mapping, and the owner membership are created, then the session is
// discarded.
func (uc *botUC) handleSetupCurrency(ctx context.Context, chatID int64, from *models.ChatUser, value string) error {
	session, err := uc.getSession(ctx, chatID)
	if err != nil || session == nil {
		return err
	}
	if session.Step != models.SetupStepCurrency {
		return nil
	}
	if !currency.IsSupported(value) {
		return nil
	}
	session.Currency = value
	session.Step = models.SetupStepComplete

	ownerID := session.UserID
	if ownerID == "" && from != nil {
		if user, uerr := uc.userRepo.GetByTelegramID(ctx, from.ID); uerr == nil {
			ownerID = user.ID
		}
	}

	c := &models.Context{
		ID:       uuid.New().String(),
		Name:     session.Name,
		Type:     session.Type,
		Currency: session.Currency,
		Policy:   session.Permissions,
	}
	if err := uc.contextRepo.CreateContext(ctx, c); err != nil {
		return err
	}
	mapping := &models.ChatContextMapping{
		ChatID:    session.ChatID,
		ChatType:  models.ChatTypeGroup,
		ContextID: c.ID,
		ChatTitle: session.ChatTitle,
	}
	if err := uc.contextRepo.CreateMapping(ctx, mapping); err != nil {
		return err
	}
	if ownerID != "" {
		membership := &models.Membership{
			ContextID: c.ID,
			UserID:    ownerID,
			Role:      models.RoleOwner,
			IsActive:  true,
		}
		if err := uc.contextRepo.GrantMembership(ctx, membership); err != nil {
			return err
		}
	}

	event := models.ContextCreatedEvent{
		ContextID: c.ID,
		Name:      c.Name,
		Type:      c.Type,
		CreatedBy: ownerID,
		Timestamp: time.Now(),
	}
	if err := uc.eventsGW.ContextCreated(event); err != nil {
		logger.Warn("failed to publish context created event",
			logger.String("context_id", c.ID), logger.Err(err))
	}

	if err := uc.pendingRepo.DeleteSession(ctx, chatID); err != nil {
		logger.Warn("failed to delete setup session",
			logger.Int64("chat_id", chatID), logger.Err(err))
	}

	text := fmt.Sprintf("All set! \"%s\" is ready (%s, %s). Start sending transactions whenever you like.", c.Name, c.Type, c.Currency)
	return uc.telegramGW.SendMessage(ctx, chatID, text)
}

// handleSetupBack steps the wizard back one stage and re-prompts it
func (uc *botUC) handleSetupBack(ctx context.Context, chatID int64) error {
	session, err := uc.getSession(ctx, chatID)
	if err != nil || session == nil {
		return err
	}
	if session.PendingType != "" {
		// Back out of the type confirmation sub-step only.
		session.PendingType = ""
	} else {
		session.Step = models.PrevSetupStep(session.Step)
	}
	if err := uc.pendingRepo.StoreSession(ctx, session); err != nil {
		return err
	}
	return uc.promptStep(ctx, chatID, session.Step)
}

// promptStep re-sends the UI for the session's current step
func (uc *botUC) promptStep(ctx context.Context, chatID int64, step models.SetupStep) error {
	switch step {
	case models.SetupStepType:
		return uc.telegramGW.SendMessageWithKeyboard(ctx, chatID, "What kind of context is this?", setupTypeKeyboard())
	case models.SetupStepName:
		return uc.telegramGW.SendMessage(ctx, chatID, "What should I call this context? Send the name as a message.")
	case models.SetupStepPermissions:
		return uc.telegramGW.SendMessageWithKeyboard(ctx, chatID, "Who may record transactions here?", setupPermKeyboard())
	case models.SetupStepCurrency:
		return uc.telegramGW.SendMessageWithKeyboard(ctx, chatID, "Pick the default currency.", setupCurrencyKeyboard())
	}
	return nil
}

// getSession fetches the chat's wizard session. A nil session with nil
// error means it expired and the user was told how to restart.
func (uc *botUC) getSession(ctx context.Context, chatID int64) (*models.SetupSession, error) {
	session, err := uc.pendingRepo.GetSession(ctx, chatID)
	if errors.Is(err, bot.ErrSessionNotFound) {
		if serr := uc.telegramGW.SendMessage(ctx, chatID, msgSessionExpired); serr != nil {
			return nil, serr
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}
