package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/piresc/kasbot/internal/pkg/constants"
	"github.com/piresc/kasbot/internal/pkg/logger"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/bot"
)

// handleCallback acknowledges the interaction and routes it by its
// data prefix. Unknown prefixes are acknowledged and dropped.
func (uc *botUC) handleCallback(ctx context.Context, cb *models.CallbackQuery) error {
	if err := uc.telegramGW.AnswerCallback(ctx, cb.ID, ""); err != nil {
		logger.Warn("failed to acknowledge callback", logger.String("callback_id", cb.ID), logger.Err(err))
	}
	chatID := callbackChatID(cb)
	if chatID == 0 || cb.From == nil {
		return nil
	}

	switch {
	case strings.HasPrefix(cb.Data, constants.CallbackConfirm):
		return uc.confirmSingle(ctx, chatID, cb.From, strings.TrimPrefix(cb.Data, constants.CallbackConfirm))
	case strings.HasPrefix(cb.Data, constants.CallbackEdit):
		return uc.editSingle(ctx, chatID, strings.TrimPrefix(cb.Data, constants.CallbackEdit))
	case strings.HasPrefix(cb.Data, constants.CallbackCancel):
		return uc.cancelSingle(ctx, chatID, strings.TrimPrefix(cb.Data, constants.CallbackCancel))
	case strings.HasPrefix(cb.Data, constants.CallbackConfirmBatch):
		return uc.confirmBatch(ctx, chatID, cb.From, strings.TrimPrefix(cb.Data, constants.CallbackConfirmBatch))
	case strings.HasPrefix(cb.Data, constants.CallbackReviewBatch):
		return uc.reviewBatch(ctx, chatID, strings.TrimPrefix(cb.Data, constants.CallbackReviewBatch))
	case strings.HasPrefix(cb.Data, constants.CallbackCancelBatch):
		return uc.cancelBatch(ctx, chatID, strings.TrimPrefix(cb.Data, constants.CallbackCancelBatch))
	case strings.HasPrefix(cb.Data, constants.CallbackSetupTypeOK):
		return uc.handleSetupTypeConfirm(ctx, chatID, strings.TrimPrefix(cb.Data, constants.CallbackSetupTypeOK))
	case strings.HasPrefix(cb.Data, constants.CallbackSetupType):
		return uc.handleSetupType(ctx, chatID, strings.TrimPrefix(cb.Data, constants.CallbackSetupType))
	case strings.HasPrefix(cb.Data, constants.CallbackSetupPerm):
		return uc.handleSetupPermissions(ctx, chatID, strings.TrimPrefix(cb.Data, constants.CallbackSetupPerm))
	case strings.HasPrefix(cb.Data, constants.CallbackSetupCur):
		return uc.handleSetupCurrency(ctx, chatID, cb.From, strings.TrimPrefix(cb.Data, constants.CallbackSetupCur))
	case strings.HasPrefix(cb.Data, constants.CallbackSetupBack):
		return uc.handleSetupBack(ctx, chatID)
	default:
		logger.Debug("unknown callback prefix", logger.String("data", cb.Data))
		return nil
	}
}

// confirmSingle persists one pending candidate. A missing entry means
// it expired or was already resolved.
func (uc *botUC) confirmSingle(ctx context.Context, chatID int64, from *models.ChatUser, tempID string) error {
	pending, err := uc.pendingRepo.GetPending(ctx, tempID)
	if errors.Is(err, bot.ErrPendingNotFound) {
		return uc.telegramGW.SendMessage(ctx, chatID, msgExpired)
	}
	if err != nil {
		return err
	}

	user, err := uc.userRepo.GetByTelegramID(ctx, from.ID)
	if err != nil {
		return err
	}

	saved, err := uc.persistCandidate(ctx, pending, user.ID)
	if err != nil {
		return err
	}

	event := models.TransactionConfirmedEvent{
		TransactionID: saved.ID,
		ContextID:     saved.ContextID,
		UserID:        saved.UserID,
		Amount:        saved.Amount,
		Currency:      saved.Currency,
		Type:          saved.Type,
		Timestamp:     time.Now(),
	}
	if err := uc.eventsGW.TransactionConfirmed(event); err != nil {
		logger.Warn("failed to publish transaction confirmed event",
			logger.String("transaction_id", saved.ID), logger.Err(err))
	}

	if err := uc.pendingRepo.DeletePending(ctx, tempID); err != nil {
		logger.Warn("failed to delete pending transaction",
			logger.String("temp_id", tempID), logger.Err(err))
	}
	return uc.telegramGW.SendMessage(ctx, chatID, formatSaved(saved))
}

// editSingle discards the pending entry and asks for a corrected
// resend. Editing in place is not supported; re-extraction from a new
// message is always fresher than patching stale fields.
func (uc *botUC) editSingle(ctx context.Context, chatID int64, tempID string) error {
	_, err := uc.pendingRepo.GetPending(ctx, tempID)
	if errors.Is(err, bot.ErrPendingNotFound) {
		return uc.telegramGW.SendMessage(ctx, chatID, msgExpired)
	}
	if err != nil {
		return err
	}
	if err := uc.pendingRepo.DeletePending(ctx, tempID); err != nil {
		return err
	}
	return uc.telegramGW.SendMessage(ctx, chatID, msgEditPrompt)
}

func (uc *botUC) cancelSingle(ctx context.Context, chatID int64, tempID string) error {
	if err := uc.pendingRepo.DeletePending(ctx, tempID); err != nil && !errors.Is(err, bot.ErrPendingNotFound) {
		return err
	}
	return uc.telegramGW.SendMessage(ctx, chatID, msgCancelled)
}

// persistCandidate turns a confirmed candidate into a durable record
func (uc *botUC) persistCandidate(ctx context.Context, pending *models.ParsedTransaction, userID string) (*models.Transaction, error) {
	date := time.Now()
	if pending.Date != nil {
		date = *pending.Date
	}
	tx := &models.Transaction{
		ContextID:    pending.ContextID,
		UserID:       userID,
		Amount:       pending.Amount,
		Currency:     pending.Currency,
		Type:         pending.Type,
		Description:  pending.Description,
		Category:     pending.Category,
		MerchantName: pending.MerchantName,
		Date:         date,
	}
	id, err := uc.txRepo.Insert(ctx, tx)
	if err != nil {
		return nil, err
	}
	tx.ID = id
	return tx, nil
}
