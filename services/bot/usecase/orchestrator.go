package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/piresc/kasbot/internal/pkg/logger"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/bot"
	"github.com/piresc/kasbot/services/currency"
	"github.com/piresc/kasbot/services/extraction"
)

// botUC implements the bot.BotUC interface
type botUC struct {
	cfg         *models.Config
	pendingRepo bot.PendingRepo
	contextRepo bot.ContextRepo
	userRepo    bot.UserRepo
	txRepo      bot.TransactionRepo
	telegramGW  bot.TelegramGW
	eventsGW    bot.EventsGW
	extractor   extraction.Extractor
	converter   currency.Converter
}

// NewBotUC creates a new bot use case
func NewBotUC(
	cfg *models.Config,
	pendingRepo bot.PendingRepo,
	contextRepo bot.ContextRepo,
	userRepo bot.UserRepo,
	txRepo bot.TransactionRepo,
	telegramGW bot.TelegramGW,
	eventsGW bot.EventsGW,
	extractor extraction.Extractor,
	converter currency.Converter,
) (bot.BotUC, error) {
	return &botUC{
		cfg:         cfg,
		pendingRepo: pendingRepo,
		contextRepo: contextRepo,
		userRepo:    userRepo,
		txRepo:      txRepo,
		telegramGW:  telegramGW,
		eventsGW:    eventsGW,
		extractor:   extractor,
		converter:   converter,
	}, nil
}

// HandleUpdate routes one inbound update. Processing errors are logged
// and answered with a generic apology so the webhook always succeeds;
// the platform must never retry an update we already consumed.
func (uc *botUC) HandleUpdate(ctx context.Context, update *models.Update) error {
	switch {
	case update.CallbackQuery != nil:
		if err := uc.handleCallback(ctx, update.CallbackQuery); err != nil {
			logger.Error("callback handling failed",
				logger.String("data", update.CallbackQuery.Data),
				logger.Err(err))
			uc.apologize(ctx, callbackChatID(update.CallbackQuery))
		}
	case update.Message != nil:
		if err := uc.handleMessage(ctx, update.Message); err != nil {
			logger.Error("message handling failed",
				logger.Int64("chat_id", update.Message.Chat.ID),
				logger.Err(err))
			uc.apologize(ctx, update.Message.Chat.ID)
		}
	default:
		logger.Debug("ignoring update without message or callback",
			logger.Int64("update_id", update.UpdateID))
	}
	return nil
}

// handleMessage dispatches a chat message in strict priority order:
// member events, sender lookup, wizard text input, commands, media,
// then plain text extraction.
func (uc *botUC) handleMessage(ctx context.Context, msg *models.Message) error {
	if uc.botWasAdded(msg) {
		return uc.handleBotAdded(ctx, msg)
	}
	if msg.From == nil || msg.From.IsBot {
		return nil
	}

	user, err := uc.userRepo.GetByTelegramID(ctx, msg.From.ID)
	if errors.Is(err, bot.ErrUserNotFound) {
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgLinkAccount)
	}
	if err != nil {
		return err
	}

	// Free-text wizard input takes priority over extraction but never
	// over commands.
	if msg.Text != "" && !strings.HasPrefix(msg.Text, "/") {
		session, serr := uc.pendingRepo.GetSession(ctx, msg.Chat.ID)
		if serr == nil && session.Step == models.SetupStepName {
			return uc.handleSetupNameInput(ctx, msg, session)
		}
	}

	switch {
	case strings.HasPrefix(msg.Text, "/"):
		return uc.handleCommand(ctx, msg, user)
	case msg.Voice != nil:
		return uc.handleVoice(ctx, msg, user)
	case len(msg.Photo) > 0:
		return uc.handlePhoto(ctx, msg, user)
	case msg.Text != "":
		return uc.handleText(ctx, msg, user)
	}
	return nil
}

// botWasAdded reports whether this message announces the bot joining
// the chat
func (uc *botUC) botWasAdded(msg *models.Message) bool {
	for _, member := range msg.NewChatMembers {
		if member.IsBot && member.Username == uc.cfg.Telegram.BotUsername {
			return true
		}
	}
	return false
}

// handleBotAdded starts onboarding when the bot joins a group, or sends
// the welcome in private chats. Onboarding needs a linked account for
// the context owner, so an unrecognized adder gets the link prompt
// instead of the wizard.
func (uc *botUC) handleBotAdded(ctx context.Context, msg *models.Message) error {
	if msg.Chat.Type == models.ChatTypePrivate {
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgWelcome)
	}
	if msg.From == nil {
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgLinkAccount)
	}
	user, err := uc.userRepo.GetByTelegramID(ctx, msg.From.ID)
	if err != nil {
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgLinkAccount)
	}
	return uc.startSetup(ctx, msg.Chat, user.ID)
}

func (uc *botUC) handleCommand(ctx context.Context, msg *models.Message, user *models.User) error {
	cmd := msg.Text
	if i := strings.IndexAny(cmd, " @"); i > 0 {
		cmd = cmd[:i]
	}
	switch cmd {
	case "/start":
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgWelcome)
	case "/help":
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgHelp)
	case "/setup":
		if msg.Chat.Type == models.ChatTypePrivate {
			return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgSetupGroupOnly)
		}
		return uc.startSetup(ctx, msg.Chat, user.ID)
	case "/cancel":
		if err := uc.pendingRepo.DeleteSession(ctx, msg.Chat.ID); err != nil {
			logger.Warn("failed to delete setup session",
				logger.Int64("chat_id", msg.Chat.ID), logger.Err(err))
		}
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgSetupCancelled)
	default:
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgHelp)
	}
}

func (uc *botUC) handleText(ctx context.Context, msg *models.Message, user *models.User) error {
	c, err := uc.prepareContext(ctx, msg, user)
	if err != nil || c == nil {
		return err
	}
	candidates, err := uc.extractor.ExtractText(ctx, msg.Text, c.Currency)
	if errors.Is(err, extraction.ErrNoTransaction) {
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgNoTransaction)
	}
	if err != nil {
		return err
	}
	return uc.presentCandidates(ctx, msg.Chat.ID, user, c, candidates)
}

func (uc *botUC) handleVoice(ctx context.Context, msg *models.Message, user *models.User) error {
	c, err := uc.prepareContext(ctx, msg, user)
	if err != nil || c == nil {
		return err
	}
	audio, err := uc.telegramGW.DownloadFile(ctx, msg.Voice.FileID)
	if err != nil {
		return err
	}
	candidates, err := uc.extractor.ExtractVoice(ctx, audio, c.Currency)
	if errors.Is(err, extraction.ErrNoTransaction) {
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgNoTransaction)
	}
	if err != nil {
		return err
	}
	return uc.presentCandidates(ctx, msg.Chat.ID, user, c, candidates)
}

func (uc *botUC) handlePhoto(ctx context.Context, msg *models.Message, user *models.User) error {
	c, err := uc.prepareContext(ctx, msg, user)
	if err != nil || c == nil {
		return err
	}
	// Sizes arrive smallest first; the last one is the full resolution.
	photo := msg.Photo[len(msg.Photo)-1]
	image, err := uc.telegramGW.DownloadFile(ctx, photo.FileID)
	if err != nil {
		return err
	}
	candidates, err := uc.extractor.ExtractPhoto(ctx, image, c.Currency)
	if errors.Is(err, extraction.ErrNoTransaction) {
		return uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgNoTransaction)
	}
	if err != nil {
		return err
	}
	return uc.presentCandidates(ctx, msg.Chat.ID, user, c, candidates)
}

// prepareContext resolves the chat's financial context and enforces
// the group transaction policy. A nil context with nil error means the
// sender was refused and already answered.
func (uc *botUC) prepareContext(ctx context.Context, msg *models.Message, user *models.User) (*models.Context, error) {
	c, err := uc.resolveContext(ctx, msg.Chat, user)
	if err != nil {
		return nil, err
	}
	if msg.Chat.Type != models.ChatTypePrivate && c.Policy == models.PolicyAdmins {
		role, rerr := uc.contextRepo.GetMemberRole(ctx, c.ID, user.ID)
		if rerr != nil || (role != models.RoleAdmin && role != models.RoleOwner) {
			if serr := uc.telegramGW.SendMessage(ctx, msg.Chat.ID, msgNotAllowed); serr != nil {
				return nil, serr
			}
			return nil, nil
		}
	}
	return c, nil
}

// presentCandidates converts candidates into the context currency and
// shows the matching confirmation UI. Only candidates above the
// confidence gate are ever offered for confirmation: a single keyboard
// for one, the batch protocol for several. Sub-threshold and
// manual-review candidates never reach a keyboard; they expire in the
// pending store untouched.
func (uc *botUC) presentCandidates(ctx context.Context, chatID int64, user *models.User, c *models.Context, candidates []models.ParsedTransaction) error {
	if len(candidates) == 0 {
		return uc.telegramGW.SendMessage(ctx, chatID, msgNoTransaction)
	}

	confident := make([]models.ParsedTransaction, 0, len(candidates))
	needsReview := false
	for i := range candidates {
		uc.normalize(ctx, &candidates[i], c)
		candidates[i].ContextID = c.ID
		switch {
		case candidates[i].NeedsReview:
			needsReview = true
		case candidates[i].Confidence <= models.MinConfidence:
			logger.Debug("candidate below confidence gate",
				logger.Int64("chat_id", chatID),
				logger.Float64("confidence", candidates[i].Confidence))
		default:
			confident = append(confident, candidates[i])
		}
	}

	for i := range confident {
		if err := uc.pendingRepo.StorePending(ctx, confident[i]); err != nil {
			return err
		}
	}

	switch {
	case len(confident) > 1:
		return uc.presentBatch(ctx, chatID, user, c, confident)
	case len(confident) == 1:
		tx := &confident[0]
		return uc.telegramGW.SendMessageWithKeyboard(ctx, chatID, formatCandidate(tx), confirmKeyboard(tx.TempID))
	case needsReview:
		return uc.telegramGW.SendMessage(ctx, chatID, msgNeedsReview)
	default:
		return uc.telegramGW.SendMessage(ctx, chatID, msgLowConfidence)
	}
}

// normalize converts a candidate into the context currency exactly
// once, recording the original amount and rate. Conversion failures
// leave the candidate in its original currency.
func (uc *botUC) normalize(ctx context.Context, tx *models.ParsedTransaction, c *models.Context) {
	if tx.ExchangeRate != 0 || tx.Amount <= 0 {
		return
	}
	res, err := uc.converter.Convert(ctx, tx.Amount, tx.Currency, c.Currency)
	if err != nil {
		logger.Warn("currency conversion failed",
			logger.String("from", tx.Currency),
			logger.String("to", c.Currency),
			logger.Err(err))
		return
	}
	tx.OriginalAmount = res.OriginalAmount
	tx.OriginalCurrency = res.OriginalCurrency
	tx.ExchangeRate = res.ExchangeRate
	tx.Amount = res.ConvertedAmount
	tx.Currency = c.Currency
}

func (uc *botUC) apologize(ctx context.Context, chatID int64) {
	if chatID == 0 {
		return
	}
	if err := uc.telegramGW.SendMessage(ctx, chatID, msgApology); err != nil {
		logger.Error("failed to send apology", logger.Int64("chat_id", chatID), logger.Err(err))
	}
}

func callbackChatID(cb *models.CallbackQuery) int64 {
	if cb.Message != nil {
		return cb.Message.Chat.ID
	}
	return 0
}
