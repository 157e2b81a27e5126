package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/bot"
)

// Hand-rolled fakes for the bot collaborators. State maps mirror the
// real stores closely enough to assert on side effects.

type fakePendingRepo struct {
	pendings map[string]models.ParsedTransaction
	batches  map[string]*models.PendingBatch
	sessions map[int64]*models.SetupSession
	storeErr error
}

func newFakePendingRepo() *fakePendingRepo {
	return &fakePendingRepo{
		pendings: make(map[string]models.ParsedTransaction),
		batches:  make(map[string]*models.PendingBatch),
		sessions: make(map[int64]*models.SetupSession),
	}
}

func (r *fakePendingRepo) StorePending(_ context.Context, tx models.ParsedTransaction) error {
	if r.storeErr != nil {
		return r.storeErr
	}
	r.pendings[tx.TempID] = tx
	return nil
}

func (r *fakePendingRepo) GetPending(_ context.Context, tempID string) (*models.ParsedTransaction, error) {
	tx, ok := r.pendings[tempID]
	if !ok {
		return nil, bot.ErrPendingNotFound
	}
	return &tx, nil
}

func (r *fakePendingRepo) DeletePending(_ context.Context, tempID string) error {
	delete(r.pendings, tempID)
	return nil
}

func (r *fakePendingRepo) StoreBatch(_ context.Context, batch *models.PendingBatch) error {
	if r.storeErr != nil {
		return r.storeErr
	}
	cp := *batch
	r.batches[batch.BatchID] = &cp
	return nil
}

func (r *fakePendingRepo) GetBatch(_ context.Context, batchID string) (*models.PendingBatch, error) {
	batch, ok := r.batches[batchID]
	if !ok {
		return nil, bot.ErrBatchNotFound
	}
	cp := *batch
	return &cp, nil
}

func (r *fakePendingRepo) DeleteBatch(_ context.Context, batchID string) error {
	delete(r.batches, batchID)
	return nil
}

func (r *fakePendingRepo) StoreSession(_ context.Context, session *models.SetupSession) error {
	cp := *session
	r.sessions[session.ChatID] = &cp
	return nil
}

func (r *fakePendingRepo) GetSession(_ context.Context, chatID int64) (*models.SetupSession, error) {
	session, ok := r.sessions[chatID]
	if !ok {
		return nil, bot.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (r *fakePendingRepo) DeleteSession(_ context.Context, chatID int64) error {
	delete(r.sessions, chatID)
	return nil
}

type mappingKey struct {
	chatID   int64
	chatType models.ChatType
}

type membershipKey struct {
	contextID string
	userID    string
}

type fakeContextRepo struct {
	mappings    map[mappingKey]*models.ChatContextMapping
	contexts    map[string]*models.Context
	memberships map[membershipKey]*models.Membership
	failAll     bool
}

func newFakeContextRepo() *fakeContextRepo {
	return &fakeContextRepo{
		mappings:    make(map[mappingKey]*models.ChatContextMapping),
		contexts:    make(map[string]*models.Context),
		memberships: make(map[membershipKey]*models.Membership),
	}
}

func (r *fakeContextRepo) GetMapping(_ context.Context, chatID int64, chatType models.ChatType) (*models.ChatContextMapping, error) {
	if r.failAll {
		return nil, errors.New("db down")
	}
	mapping, ok := r.mappings[mappingKey{chatID, chatType}]
	if !ok {
		return nil, bot.ErrMappingNotFound
	}
	return mapping, nil
}

func (r *fakeContextRepo) CreateMapping(_ context.Context, mapping *models.ChatContextMapping) error {
	if r.failAll {
		return errors.New("db down")
	}
	r.mappings[mappingKey{mapping.ChatID, mapping.ChatType}] = mapping
	return nil
}

func (r *fakeContextRepo) CreateContext(_ context.Context, c *models.Context) error {
	if r.failAll {
		return errors.New("db down")
	}
	r.contexts[c.ID] = c
	return nil
}

func (r *fakeContextRepo) GetContext(_ context.Context, contextID string) (*models.Context, error) {
	c, ok := r.contexts[contextID]
	if !ok {
		return nil, fmt.Errorf("context %s not found", contextID)
	}
	return c, nil
}

func (r *fakeContextRepo) FindPersonalContext(_ context.Context, userID string) (*models.Context, error) {
	for _, c := range r.contexts {
		if c.Type != models.ContextTypePersonal {
			continue
		}
		if m, ok := r.memberships[membershipKey{c.ID, userID}]; ok && m.IsActive {
			return c, nil
		}
	}
	return nil, bot.ErrMappingNotFound
}

func (r *fakeContextRepo) HasActiveMembership(_ context.Context, contextID, userID string) (bool, error) {
	m, ok := r.memberships[membershipKey{contextID, userID}]
	return ok && m.IsActive, nil
}

func (r *fakeContextRepo) GetMemberRole(_ context.Context, contextID, userID string) (models.MemberRole, error) {
	m, ok := r.memberships[membershipKey{contextID, userID}]
	if !ok || !m.IsActive {
		return "", errors.New("no active membership")
	}
	return m.Role, nil
}

func (r *fakeContextRepo) GrantMembership(_ context.Context, membership *models.Membership) error {
	r.memberships[membershipKey{membership.ContextID, membership.UserID}] = membership
	return nil
}

type fakeUserRepo struct {
	users map[int64]*models.User
}

func (r *fakeUserRepo) GetByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	user, ok := r.users[telegramID]
	if !ok {
		return nil, bot.ErrUserNotFound
	}
	return user, nil
}

type fakeTxRepo struct {
	inserted  []*models.Transaction
	failAfter int // fail inserts once this many have succeeded; -1 never fails
}

func (r *fakeTxRepo) Insert(_ context.Context, tx *models.Transaction) (string, error) {
	if r.failAfter >= 0 && len(r.inserted) >= r.failAfter {
		return "", errors.New("insert failed")
	}
	if tx.ID == "" {
		tx.ID = fmt.Sprintf("tx-%d", len(r.inserted)+1)
	}
	r.inserted = append(r.inserted, tx)
	return tx.ID, nil
}

type sentMessage struct {
	chatID   int64
	text     string
	keyboard *models.InlineKeyboard
}

type fakeTelegramGW struct {
	sent      []sentMessage
	acked     []string
	downloads map[string][]byte
	sendErr   error
}

func newFakeTelegramGW() *fakeTelegramGW {
	return &fakeTelegramGW{downloads: make(map[string][]byte)}
}

func (g *fakeTelegramGW) SendMessage(_ context.Context, chatID int64, text string) error {
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (g *fakeTelegramGW) SendMessageWithKeyboard(_ context.Context, chatID int64, text string, keyboard models.InlineKeyboard) error {
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, sentMessage{chatID: chatID, text: text, keyboard: &keyboard})
	return nil
}

func (g *fakeTelegramGW) AnswerCallback(_ context.Context, callbackID string, _ string) error {
	g.acked = append(g.acked, callbackID)
	return nil
}

func (g *fakeTelegramGW) DownloadFile(_ context.Context, fileID string) ([]byte, error) {
	data, ok := g.downloads[fileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

func (g *fakeTelegramGW) lastMessage(t *testing.T) sentMessage {
	t.Helper()
	require.NotEmpty(t, g.sent, "expected at least one outbound message")
	return g.sent[len(g.sent)-1]
}

type fakeEventsGW struct {
	confirmed []models.TransactionConfirmedEvent
	batches   []models.BatchConfirmedEvent
	contexts  []models.ContextCreatedEvent
}

func (g *fakeEventsGW) TransactionConfirmed(event models.TransactionConfirmedEvent) error {
	g.confirmed = append(g.confirmed, event)
	return nil
}

func (g *fakeEventsGW) BatchConfirmed(event models.BatchConfirmedEvent) error {
	g.batches = append(g.batches, event)
	return nil
}

func (g *fakeEventsGW) ContextCreated(event models.ContextCreatedEvent) error {
	g.contexts = append(g.contexts, event)
	return nil
}

type fakeExtractor struct {
	candidates []models.ParsedTransaction
	err        error
	registrar  *fakePendingRepo
	nextTempID int
}

func (e *fakeExtractor) extract(ctx context.Context) ([]models.ParsedTransaction, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([]models.ParsedTransaction, len(e.candidates))
	copy(out, e.candidates)
	for i := range out {
		e.nextTempID++
		out[i].TempID = fmt.Sprintf("temp-%d", e.nextTempID)
		if e.registrar != nil {
			if err := e.registrar.StorePending(ctx, out[i]); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (e *fakeExtractor) ExtractText(ctx context.Context, _, _ string) ([]models.ParsedTransaction, error) {
	return e.extract(ctx)
}

func (e *fakeExtractor) ExtractVoice(ctx context.Context, _ []byte, _ string) ([]models.ParsedTransaction, error) {
	return e.extract(ctx)
}

func (e *fakeExtractor) ExtractPhoto(ctx context.Context, _ []byte, _ string) ([]models.ParsedTransaction, error) {
	return e.extract(ctx)
}

type fakeConverter struct {
	rates map[string]float64 // "FROMTO" -> rate; missing pairs use 1.0
}

func (c *fakeConverter) Convert(_ context.Context, amount float64, from, to string) (models.ConversionResult, error) {
	rate := 1.0
	if c.rates != nil {
		if r, ok := c.rates[from+to]; ok {
			rate = r
		}
	}
	return models.ConversionResult{
		ConvertedAmount:  amount * rate,
		ExchangeRate:     rate,
		OriginalAmount:   amount,
		OriginalCurrency: from,
	}, nil
}

// testBot bundles the use case under test with its fakes
type testBot struct {
	uc        *botUC
	pending   *fakePendingRepo
	contexts  *fakeContextRepo
	users     *fakeUserRepo
	txs       *fakeTxRepo
	telegram  *fakeTelegramGW
	events    *fakeEventsGW
	extractor *fakeExtractor
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()

	pending := newFakePendingRepo()
	contexts := newFakeContextRepo()
	users := &fakeUserRepo{users: map[int64]*models.User{}}
	txs := &fakeTxRepo{failAfter: -1}
	telegram := newFakeTelegramGW()
	events := &fakeEventsGW{}
	extractor := &fakeExtractor{registrar: pending}

	cfg := &models.Config{}
	cfg.Telegram.BotUsername = "kasbot"
	cfg.Currency.Default = "USD"

	uc, err := NewBotUC(cfg, pending, contexts, users, txs, telegram, events, extractor, &fakeConverter{})
	require.NoError(t, err)

	return &testBot{
		uc:        uc.(*botUC),
		pending:   pending,
		contexts:  contexts,
		users:     users,
		txs:       txs,
		telegram:  telegram,
		events:    events,
		extractor: extractor,
	}
}

// seedUser registers a linked account and returns it
func (tb *testBot) seedUser(telegramID int64, userID string) *models.User {
	user := &models.User{ID: userID, TelegramID: telegramID, FirstName: "Alice"}
	tb.users.users[telegramID] = user
	return user
}

// seedContext creates a context with an active membership and maps the
// chat to it
func (tb *testBot) seedContext(chatID int64, chatType models.ChatType, userID string, role models.MemberRole) *models.Context {
	c := &models.Context{
		ID:       fmt.Sprintf("ctx-%d", chatID),
		Name:     "Seeded",
		Type:     models.ContextTypeGroup,
		Currency: "USD",
		Policy:   models.PolicyEveryone,
	}
	if chatType == models.ChatTypePrivate {
		c.Type = models.ContextTypePersonal
	}
	tb.contexts.contexts[c.ID] = c
	tb.contexts.memberships[membershipKey{c.ID, userID}] = &models.Membership{
		ContextID: c.ID, UserID: userID, Role: role, IsActive: true,
	}
	tb.contexts.mappings[mappingKey{chatID, chatType}] = &models.ChatContextMapping{
		ChatID: chatID, ChatType: chatType, ContextID: c.ID,
	}
	return c
}

func textUpdate(chatID int64, fromID int64, text string) *models.Update {
	return &models.Update{
		UpdateID: 1,
		Message: &models.Message{
			MessageID: 10,
			From:      &models.ChatUser{ID: fromID},
			Chat:      models.Chat{ID: chatID, Type: models.ChatTypePrivate},
			Text:      text,
		},
	}
}

func groupTextUpdate(chatID int64, fromID int64, text string) *models.Update {
	u := textUpdate(chatID, fromID, text)
	u.Message.Chat.Type = models.ChatTypeGroup
	u.Message.Chat.Title = "Trip Crew"
	return u
}

func callbackUpdate(chatID int64, fromID int64, data string) *models.Update {
	return &models.Update{
		UpdateID: 2,
		CallbackQuery: &models.CallbackQuery{
			ID:   "cb-1",
			From: &models.ChatUser{ID: fromID},
			Message: &models.Message{
				Chat: models.Chat{ID: chatID, Type: models.ChatTypePrivate},
			},
			Data: data,
		},
	}
}
