package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/piresc/kasbot/internal/pkg/logger"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/bot"
)

// resolveContext finds the financial context a chat's transactions
// belong to, creating one when the chat is unmapped. No resolution
// failure blocks a transaction: the sender's personal context is the
// fallback of last resort.
func (uc *botUC) resolveContext(ctx context.Context, chat models.Chat, user *models.User) (*models.Context, error) {
	c, err := uc.lookupOrCreate(ctx, chat, user)
	if err == nil {
		return c, nil
	}
	logger.Warn("context resolution failed, falling back to personal",
		logger.Int64("chat_id", chat.ID),
		logger.String("user_id", user.ID),
		logger.Err(err))
	return uc.personalContext(ctx, user)
}

func (uc *botUC) lookupOrCreate(ctx context.Context, chat models.Chat, user *models.User) (*models.Context, error) {
	mapping, err := uc.contextRepo.GetMapping(ctx, chat.ID, chat.Type)
	if err == nil {
		active, merr := uc.contextRepo.HasActiveMembership(ctx, mapping.ContextID, user.ID)
		if merr != nil {
			return nil, merr
		}
		if !active {
			// Mapped chat but no membership: joiners become plain
			// members on their first transaction.
			grant := &models.Membership{
				ContextID: mapping.ContextID,
				UserID:    user.ID,
				Role:      models.RoleMember,
				IsActive:  true,
			}
			if gerr := uc.contextRepo.GrantMembership(ctx, grant); gerr != nil {
				return nil, gerr
			}
		}
		return uc.contextRepo.GetContext(ctx, mapping.ContextID)
	}
	if !errors.Is(err, bot.ErrMappingNotFound) {
		return nil, err
	}

	if chat.Type == models.ChatTypePrivate {
		c, perr := uc.personalContext(ctx, user)
		if perr != nil {
			return nil, perr
		}
		if merr := uc.mapChat(ctx, chat, c.ID); merr != nil {
			return nil, merr
		}
		return c, nil
	}
	return uc.createGroupContext(ctx, chat, user)
}

// personalContext finds the user's personal context, creating it on
// first use
func (uc *botUC) personalContext(ctx context.Context, user *models.User) (*models.Context, error) {
	c, err := uc.contextRepo.FindPersonalContext(ctx, user.ID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, bot.ErrMappingNotFound) {
		return nil, err
	}

	name := "Personal"
	if user.FirstName != "" {
		name = user.FirstName
	}
	c = &models.Context{
		ID:       uuid.New().String(),
		Name:     name,
		Type:     models.ContextTypePersonal,
		Currency: uc.cfg.Currency.Default,
		Policy:   models.PolicyEveryone,
	}
	if cerr := uc.createContextWithOwner(ctx, c, user.ID); cerr != nil {
		return nil, cerr
	}
	return c, nil
}

// createGroupContext provisions a default context for a group chat
// that was never onboarded. The wizard can still be run later via
// /setup; until then the chat title names the context.
func (uc *botUC) createGroupContext(ctx context.Context, chat models.Chat, user *models.User) (*models.Context, error) {
	name := chat.Title
	if name == "" {
		name = "Group"
	}
	c := &models.Context{
		ID:       uuid.New().String(),
		Name:     name,
		Type:     models.ContextTypeGroup,
		Currency: uc.cfg.Currency.Default,
		Policy:   models.PolicyEveryone,
	}
	if err := uc.createContextWithOwner(ctx, c, user.ID); err != nil {
		return nil, err
	}
	if err := uc.mapChat(ctx, chat, c.ID); err != nil {
		return nil, err
	}

	event := models.ContextCreatedEvent{
		ContextID: c.ID,
		Name:      c.Name,
		Type:      c.Type,
		CreatedBy: user.ID,
	}
	if err := uc.eventsGW.ContextCreated(event); err != nil {
		logger.Warn("failed to publish context created event",
			logger.String("context_id", c.ID), logger.Err(err))
	}
	return c, nil
}

func (uc *botUC) createContextWithOwner(ctx context.Context, c *models.Context, userID string) error {
	if err := uc.contextRepo.CreateContext(ctx, c); err != nil {
		return err
	}
	membership := &models.Membership{
		ContextID: c.ID,
		UserID:    userID,
		Role:      models.RoleOwner,
		IsActive:  true,
	}
	return uc.contextRepo.GrantMembership(ctx, membership)
}

func (uc *botUC) mapChat(ctx context.Context, chat models.Chat, contextID string) error {
	mapping := &models.ChatContextMapping{
		ChatID:    chat.ID,
		ChatType:  chat.Type,
		ContextID: contextID,
		ChatTitle: chat.Title,
	}
	return uc.contextRepo.CreateMapping(ctx, mapping)
}
