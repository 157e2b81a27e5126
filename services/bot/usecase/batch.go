package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/piresc/kasbot/internal/pkg/logger"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/bot"
)

// presentBatch stores a multi-candidate group under one batch ID and
// shows the confirm-all keyboard
func (uc *botUC) presentBatch(ctx context.Context, chatID int64, user *models.User, c *models.Context, candidates []models.ParsedTransaction) error {
	batch := &models.PendingBatch{
		BatchID:    uuid.New().String(),
		ChatID:     chatID,
		UserID:     user.ID,
		ContextID:  c.ID,
		Candidates: candidates,
		CreatedAt:  time.Now(),
	}
	if err := uc.pendingRepo.StoreBatch(ctx, batch); err != nil {
		return err
	}
	return uc.telegramGW.SendMessageWithKeyboard(ctx, chatID, formatBatchPrompt(batch), batchKeyboard(batch.BatchID))
}

// confirmBatch persists every candidate in the batch independently.
// One failing insert never rolls back the others; the tally reports
// what made it and what did not.
func (uc *botUC) confirmBatch(ctx context.Context, chatID int64, from *models.ChatUser, batchID string) error {
	batch, err := uc.pendingRepo.GetBatch(ctx, batchID)
	if errors.Is(err, bot.ErrBatchNotFound) {
		return uc.telegramGW.SendMessage(ctx, chatID, msgExpired)
	}
	if err != nil {
		return err
	}

	user, err := uc.userRepo.GetByTelegramID(ctx, from.ID)
	if err != nil {
		return err
	}

	var failedIdx []int
	for i := range batch.Candidates {
		if _, perr := uc.persistCandidate(ctx, &batch.Candidates[i], user.ID); perr != nil {
			logger.Error("failed to persist batch candidate",
				logger.String("batch_id", batchID),
				logger.Int("index", i),
				logger.Err(perr))
			failedIdx = append(failedIdx, i)
		}
	}

	event := models.BatchConfirmedEvent{
		BatchID:   batchID,
		ContextID: batch.ContextID,
		UserID:    user.ID,
		Succeeded: len(batch.Candidates) - len(failedIdx),
		Failed:    len(failedIdx),
		Timestamp: time.Now(),
	}
	if err := uc.eventsGW.BatchConfirmed(event); err != nil {
		logger.Warn("failed to publish batch confirmed event",
			logger.String("batch_id", batchID), logger.Err(err))
	}

	if err := uc.pendingRepo.DeleteBatch(ctx, batchID); err != nil {
		logger.Warn("failed to delete pending batch",
			logger.String("batch_id", batchID), logger.Err(err))
	}
	for i := range batch.Candidates {
		if derr := uc.pendingRepo.DeletePending(ctx, batch.Candidates[i].TempID); derr != nil && !errors.Is(derr, bot.ErrPendingNotFound) {
			logger.Warn("failed to delete batch candidate pending entry",
				logger.String("temp_id", batch.Candidates[i].TempID), logger.Err(derr))
		}
	}

	return uc.telegramGW.SendMessage(ctx, chatID, formatBatchResult(batch, failedIdx))
}

// reviewBatch re-lists the batch with per-candidate detail without
// mutating it. Items stay pending until confirmed, cancelled, or
// expired.
func (uc *botUC) reviewBatch(ctx context.Context, chatID int64, batchID string) error {
	batch, err := uc.pendingRepo.GetBatch(ctx, batchID)
	if errors.Is(err, bot.ErrBatchNotFound) {
		return uc.telegramGW.SendMessage(ctx, chatID, msgExpired)
	}
	if err != nil {
		return err
	}
	return uc.telegramGW.SendMessageWithKeyboard(ctx, chatID, formatBatchReview(batch), batchKeyboard(batchID))
}

func (uc *botUC) cancelBatch(ctx context.Context, chatID int64, batchID string) error {
	batch, err := uc.pendingRepo.GetBatch(ctx, batchID)
	if err == nil {
		for i := range batch.Candidates {
			if derr := uc.pendingRepo.DeletePending(ctx, batch.Candidates[i].TempID); derr != nil && !errors.Is(derr, bot.ErrPendingNotFound) {
				logger.Warn("failed to delete batch candidate pending entry",
					logger.String("temp_id", batch.Candidates[i].TempID), logger.Err(derr))
			}
		}
	} else if !errors.Is(err, bot.ErrBatchNotFound) {
		return err
	}
	if err := uc.pendingRepo.DeleteBatch(ctx, batchID); err != nil && !errors.Is(err, bot.ErrBatchNotFound) {
		return err
	}
	return uc.telegramGW.SendMessage(ctx, chatID, msgCancelled)
}
