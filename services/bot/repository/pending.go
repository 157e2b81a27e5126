package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/piresc/kasbot/internal/pkg/constants"
	"github.com/piresc/kasbot/internal/pkg/database"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/bot"
)

// PendingRepoImpl keeps ephemeral conversational state in Redis.
// Redis key TTLs enforce expiry, so reads never observe residual data
// past TTL and no sweeping is needed. A chat owns its keys, so
// last-write-wins per key is safe.
type PendingRepoImpl struct {
	redisClient *database.RedisClient
}

// NewPendingRepo creates a new ephemeral state repository
func NewPendingRepo(redisClient *database.RedisClient) *PendingRepoImpl {
	return &PendingRepoImpl{
		redisClient: redisClient,
	}
}

// StorePending stores a single transaction candidate under its temp id
func (r *PendingRepoImpl) StorePending(ctx context.Context, tx models.ParsedTransaction) error {
	key := fmt.Sprintf(constants.KeyPendingTransaction, tx.TempID)

	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal pending transaction: %w", err)
	}

	if err := r.redisClient.Set(ctx, key, data, constants.PendingTransactionTTL); err != nil {
		return fmt.Errorf("failed to store pending transaction: %w", err)
	}

	return nil
}

// GetPending retrieves a pending candidate, or ErrPendingNotFound
// after expiry or removal
func (r *PendingRepoImpl) GetPending(ctx context.Context, tempID string) (*models.ParsedTransaction, error) {
	key := fmt.Sprintf(constants.KeyPendingTransaction, tempID)

	val, err := r.redisClient.Get(ctx, key)
	if err == redis.Nil {
		return nil, bot.ErrPendingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending transaction: %w", err)
	}

	var tx models.ParsedTransaction
	if err := json.Unmarshal([]byte(val), &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending transaction: %w", err)
	}

	return &tx, nil
}

// DeletePending removes a pending candidate
func (r *PendingRepoImpl) DeletePending(ctx context.Context, tempID string) error {
	key := fmt.Sprintf(constants.KeyPendingTransaction, tempID)
	return r.redisClient.Delete(ctx, key)
}

// StoreBatch stores a candidate batch under its batch id
func (r *PendingRepoImpl) StoreBatch(ctx context.Context, batch *models.PendingBatch) error {
	key := fmt.Sprintf(constants.KeyPendingBatch, batch.BatchID)

	data, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal pending batch: %w", err)
	}

	if err := r.redisClient.Set(ctx, key, data, constants.PendingBatchTTL); err != nil {
		return fmt.Errorf("failed to store pending batch: %w", err)
	}

	return nil
}

// GetBatch retrieves a pending batch, or ErrBatchNotFound after
// expiry or removal
func (r *PendingRepoImpl) GetBatch(ctx context.Context, batchID string) (*models.PendingBatch, error) {
	key := fmt.Sprintf(constants.KeyPendingBatch, batchID)

	val, err := r.redisClient.Get(ctx, key)
	if err == redis.Nil {
		return nil, bot.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending batch: %w", err)
	}

	var batch models.PendingBatch
	if err := json.Unmarshal([]byte(val), &batch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending batch: %w", err)
	}

	return &batch, nil
}

// DeleteBatch removes a pending batch
func (r *PendingRepoImpl) DeleteBatch(ctx context.Context, batchID string) error {
	key := fmt.Sprintf(constants.KeyPendingBatch, batchID)
	return r.redisClient.Delete(ctx, key)
}

// StoreSession stores the setup session for a chat, replacing any
// prior session
func (r *PendingRepoImpl) StoreSession(ctx context.Context, session *models.SetupSession) error {
	key := fmt.Sprintf(constants.KeySetupSession, session.ChatID)

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal setup session: %w", err)
	}

	if err := r.redisClient.Set(ctx, key, data, constants.SetupSessionTTL); err != nil {
		return fmt.Errorf("failed to store setup session: %w", err)
	}

	return nil
}

// GetSession retrieves the setup session for a chat, or
// ErrSessionNotFound after expiry or removal
func (r *PendingRepoImpl) GetSession(ctx context.Context, chatID int64) (*models.SetupSession, error) {
	key := fmt.Sprintf(constants.KeySetupSession, chatID)

	val, err := r.redisClient.Get(ctx, key)
	if err == redis.Nil {
		return nil, bot.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setup session: %w", err)
	}

	var session models.SetupSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal setup session: %w", err)
	}

	return &session, nil
}

// DeleteSession removes the setup session for a chat
func (r *PendingRepoImpl) DeleteSession(ctx context.Context, chatID int64) error {
	key := fmt.Sprintf(constants.KeySetupSession, chatID)
	return r.redisClient.Delete(ctx, key)
}
