package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/bot"
)

// UserRepoImpl implements account lookup on PostgreSQL
type UserRepoImpl struct {
	db *sqlx.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sqlx.DB) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

// GetByTelegramID returns the account linked to a chat platform
// identity, or ErrUserNotFound
func (r *UserRepoImpl) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	query := `
		SELECT id, telegram_id, username, first_name, created_at
		FROM users
		WHERE telegram_id = $1
	`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, telegramID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, bot.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}
