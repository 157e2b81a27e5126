package bot

import (
	"context"
	"errors"

	"github.com/piresc/kasbot/internal/pkg/models"
)

// Sentinel errors consumers branch on. Absent ephemeral state is a
// normal outcome ("expired, please retry"), never a programming error.
var (
	ErrPendingNotFound = errors.New("pending transaction not found")
	ErrBatchNotFound   = errors.New("pending batch not found")
	ErrSessionNotFound = errors.New("setup session not found")
	ErrMappingNotFound = errors.New("chat context mapping not found")
	ErrUserNotFound    = errors.New("user not found")
)

// PendingRepo defines the interface for the ephemeral state stores.
// All three stores expire entries on their own; Get after expiry or
// removal yields the corresponding not-found error.
type PendingRepo interface {
	StorePending(ctx context.Context, tx models.ParsedTransaction) error
	GetPending(ctx context.Context, tempID string) (*models.ParsedTransaction, error)
	DeletePending(ctx context.Context, tempID string) error

	StoreBatch(ctx context.Context, batch *models.PendingBatch) error
	GetBatch(ctx context.Context, batchID string) (*models.PendingBatch, error)
	DeleteBatch(ctx context.Context, batchID string) error

	StoreSession(ctx context.Context, session *models.SetupSession) error
	GetSession(ctx context.Context, chatID int64) (*models.SetupSession, error)
	DeleteSession(ctx context.Context, chatID int64) error
}

// ContextRepo defines the interface to the context and membership
// collaborator
type ContextRepo interface {
	GetMapping(ctx context.Context, chatID int64, chatType models.ChatType) (*models.ChatContextMapping, error)
	CreateMapping(ctx context.Context, mapping *models.ChatContextMapping) error

	CreateContext(ctx context.Context, c *models.Context) error
	GetContext(ctx context.Context, contextID string) (*models.Context, error)
	FindPersonalContext(ctx context.Context, userID string) (*models.Context, error)

	HasActiveMembership(ctx context.Context, contextID, userID string) (bool, error)
	GetMemberRole(ctx context.Context, contextID, userID string) (models.MemberRole, error)
	GrantMembership(ctx context.Context, membership *models.Membership) error
}

// UserRepo defines the interface for account lookup
type UserRepo interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
}

// TransactionRepo defines the interface to the transaction
// persistence collaborator, called only on confirm
type TransactionRepo interface {
	Insert(ctx context.Context, tx *models.Transaction) (string, error)
}
