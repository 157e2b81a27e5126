package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/piresc/kasbot/internal/pkg/models"
)

// TransactionRepoImpl is the persistence collaborator boundary for
// confirmed transactions
type TransactionRepoImpl struct {
	db *sqlx.DB
}

// NewTransactionRepo creates a new transaction repository
func NewTransactionRepo(db *sqlx.DB) *TransactionRepoImpl {
	return &TransactionRepoImpl{db: db}
}

// Insert persists a confirmed transaction and returns its durable id
func (r *TransactionRepoImpl) Insert(ctx context.Context, tx *models.Transaction) (string, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	query := `
		INSERT INTO transactions (id, context_id, user_id, amount, currency, type, description, category, merchant_name, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.ContextID,
		tx.UserID,
		tx.Amount,
		tx.Currency,
		tx.Type,
		tx.Description,
		tx.Category,
		tx.MerchantName,
		tx.Date,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert transaction: %w", err)
	}

	return tx.ID, nil
}
