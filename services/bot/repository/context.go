package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/bot"
)

// ContextRepoImpl implements context, mapping and membership storage
// on PostgreSQL
type ContextRepoImpl struct {
	db *sqlx.DB
}

// NewContextRepo creates a new context repository
func NewContextRepo(db *sqlx.DB) *ContextRepoImpl {
	return &ContextRepoImpl{db: db}
}

// GetMapping returns the mapping for a chat, or ErrMappingNotFound
func (r *ContextRepoImpl) GetMapping(ctx context.Context, chatID int64, chatType models.ChatType) (*models.ChatContextMapping, error) {
	query := `
		SELECT chat_id, chat_type, context_id, chat_title, created_at
		FROM chat_context_mappings
		WHERE chat_id = $1 AND chat_type = $2
	`

	var mapping models.ChatContextMapping
	err := r.db.GetContext(ctx, &mapping, query, chatID, chatType)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, bot.ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to get chat context mapping: %w", err)
	}

	return &mapping, nil
}

// CreateMapping inserts a chat-to-context mapping. The unique
// constraint on (chat_id, chat_type) keeps one mapping per pair.
func (r *ContextRepoImpl) CreateMapping(ctx context.Context, mapping *models.ChatContextMapping) error {
	query := `
		INSERT INTO chat_context_mappings (chat_id, chat_type, context_id, chat_title, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (chat_id, chat_type) DO UPDATE SET context_id = EXCLUDED.context_id, chat_title = EXCLUDED.chat_title
	`

	_, err := r.db.ExecContext(ctx, query, mapping.ChatID, mapping.ChatType, mapping.ContextID, mapping.ChatTitle)
	if err != nil {
		return fmt.Errorf("failed to create chat context mapping: %w", err)
	}

	return nil
}

// CreateContext inserts a new financial context
func (r *ContextRepoImpl) CreateContext(ctx context.Context, c *models.Context) error {
	query := `
		INSERT INTO contexts (id, name, type, currency, policy, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`

	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Type, c.Currency, c.Policy)
	if err != nil {
		return fmt.Errorf("failed to create context: %w", err)
	}

	return nil
}

// GetContext returns a context by id
func (r *ContextRepoImpl) GetContext(ctx context.Context, contextID string) (*models.Context, error) {
	query := `
		SELECT id, name, type, currency, policy, created_at
		FROM contexts
		WHERE id = $1
	`

	var c models.Context
	err := r.db.GetContext(ctx, &c, query, contextID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("context %s not found", contextID)
		}
		return nil, fmt.Errorf("failed to get context: %w", err)
	}

	return &c, nil
}

// FindPersonalContext returns the user's personal context, or
// sql.ErrNoRows wrapped when none exists
func (r *ContextRepoImpl) FindPersonalContext(ctx context.Context, userID string) (*models.Context, error) {
	query := `
		SELECT c.id, c.name, c.type, c.currency, c.policy, c.created_at
		FROM contexts c
		JOIN memberships m ON m.context_id = c.id
		WHERE m.user_id = $1 AND m.is_active = true AND c.type = $2
		ORDER BY c.created_at ASC
		LIMIT 1
	`

	var c models.Context
	err := r.db.GetContext(ctx, &c, query, userID, models.ContextTypePersonal)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, bot.ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to find personal context: %w", err)
	}

	return &c, nil
}

// HasActiveMembership reports whether the user currently belongs to
// the context
func (r *ContextRepoImpl) HasActiveMembership(ctx context.Context, contextID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM memberships
			WHERE context_id = $1 AND user_id = $2 AND is_active = true
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, contextID, userID); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return exists, nil
}

// GetMemberRole returns the user's role in the context
func (r *ContextRepoImpl) GetMemberRole(ctx context.Context, contextID, userID string) (models.MemberRole, error) {
	query := `
		SELECT role FROM memberships
		WHERE context_id = $1 AND user_id = $2 AND is_active = true
	`

	var role models.MemberRole
	err := r.db.GetContext(ctx, &role, query, contextID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no active membership for user %s", userID)
		}
		return "", fmt.Errorf("failed to get member role: %w", err)
	}

	return role, nil
}

// GrantMembership inserts or reactivates a membership
func (r *ContextRepoImpl) GrantMembership(ctx context.Context, membership *models.Membership) error {
	query := `
		INSERT INTO memberships (context_id, user_id, role, is_active, created_at)
		VALUES ($1, $2, $3, true, NOW())
		ON CONFLICT (context_id, user_id) DO UPDATE SET role = EXCLUDED.role, is_active = true
	`

	_, err := r.db.ExecContext(ctx, query, membership.ContextID, membership.UserID, membership.Role)
	if err != nil {
		return fmt.Errorf("failed to grant membership: %w", err)
	}

	return nil
}
