package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/bot"
)

func setupContextRepoTest(t *testing.T) (*ContextRepoImpl, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return NewContextRepo(sqlxDB), mock
}

func TestGetMapping_Found(t *testing.T) {
	repo, mock := setupContextRepoTest(t)

	rows := sqlmock.NewRows([]string{"chat_id", "chat_type", "context_id", "chat_title", "created_at"}).
		AddRow(int64(-100), "group", "ctx-1", "Family Budget", time.Now())
	mock.ExpectQuery("SELECT chat_id, chat_type, context_id, chat_title, created_at").
		WithArgs(int64(-100), models.ChatTypeGroup).
		WillReturnRows(rows)

	mapping, err := repo.GetMapping(context.Background(), -100, models.ChatTypeGroup)
	require.NoError(t, err)
	assert.Equal(t, "ctx-1", mapping.ContextID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMapping_NotFound(t *testing.T) {
	repo, mock := setupContextRepoTest(t)

	mock.ExpectQuery("SELECT chat_id, chat_type, context_id, chat_title, created_at").
		WithArgs(int64(-100), models.ChatTypeGroup).
		WillReturnRows(sqlmock.NewRows([]string{"chat_id"}))

	_, err := repo.GetMapping(context.Background(), -100, models.ChatTypeGroup)
	assert.ErrorIs(t, err, bot.ErrMappingNotFound)
}

func TestCreateMapping_Upserts(t *testing.T) {
	repo, mock := setupContextRepoTest(t)

	mock.ExpectExec("INSERT INTO chat_context_mappings").
		WithArgs(int64(-100), models.ChatTypeGroup, "ctx-1", "Family Budget").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateMapping(context.Background(), &models.ChatContextMapping{
		ChatID:    -100,
		ChatType:  models.ChatTypeGroup,
		ContextID: "ctx-1",
		ChatTitle: "Family Budget",
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContext(t *testing.T) {
	repo, mock := setupContextRepoTest(t)

	mock.ExpectExec("INSERT INTO contexts").
		WithArgs("ctx-1", "Family Budget", models.ContextTypeFamily, "USD", models.PolicyEveryone).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateContext(context.Background(), &models.Context{
		ID:       "ctx-1",
		Name:     "Family Budget",
		Type:     models.ContextTypeFamily,
		Currency: "USD",
		Policy:   models.PolicyEveryone,
	})
	assert.NoError(t, err)
}

func TestFindPersonalContext_NotFound(t *testing.T) {
	repo, mock := setupContextRepoTest(t)

	mock.ExpectQuery("SELECT c.id, c.name, c.type, c.currency, c.policy, c.created_at").
		WithArgs("user-1", models.ContextTypePersonal).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindPersonalContext(context.Background(), "user-1")
	assert.ErrorIs(t, err, bot.ErrMappingNotFound)
}

func TestHasActiveMembership(t *testing.T) {
	repo, mock := setupContextRepoTest(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ctx-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	active, err := repo.HasActiveMembership(context.Background(), "ctx-1", "user-1")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestGetMemberRole(t *testing.T) {
	repo, mock := setupContextRepoTest(t)

	mock.ExpectQuery("SELECT role FROM memberships").
		WithArgs("ctx-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("admin"))

	role, err := repo.GetMemberRole(context.Background(), "ctx-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)
}

func TestGetMemberRole_NoMembership(t *testing.T) {
	repo, mock := setupContextRepoTest(t)

	mock.ExpectQuery("SELECT role FROM memberships").
		WithArgs("ctx-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	_, err := repo.GetMemberRole(context.Background(), "ctx-1", "user-1")
	assert.Error(t, err)
}

func TestGrantMembership(t *testing.T) {
	repo, mock := setupContextRepoTest(t)

	mock.ExpectExec("INSERT INTO memberships").
		WithArgs("ctx-1", "user-1", models.RoleOwner).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.GrantMembership(context.Background(), &models.Membership{
		ContextID: "ctx-1",
		UserID:    "user-1",
		Role:      models.RoleOwner,
	})
	assert.NoError(t, err)
}
