// Package bot is the Telegram transport for the booking assistant. It
// parses inbound updates into typed actions, feeds them to the booking
// state machine, and renders the machine's prompts into messages and
// inline keyboards.
package bot

import (
	"context"
	"errors"
	"strings"
	"sync"

	"fotobook/internal/booking"
	"fotobook/internal/catalog"
	"fotobook/internal/db"
	"fotobook/internal/events"
	"fotobook/internal/export"
	"fotobook/internal/gallery"
	"fotobook/internal/metrics"
	"fotobook/internal/models"
	"fotobook/internal/reviews"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// ErrUnauthorized is returned when a non-admin reaches an admin
// operation.
var ErrUnauthorized = errors.New("unauthorized")

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
	GetFileDirectURL(fileID string) (string, error)
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

func (c *realTelegramClient) GetFileDirectURL(fileID string) (string, error) {
	return c.api.GetFileDirectURL(fileID)
}

type eventPublisher interface {
	Publish(evType string, payload interface{})
}

// Bot routes Telegram updates between users, admins, and the booking
// machine.
type Bot struct {
	tg       telegramClient
	machine  *booking.Machine
	db       *db.DB
	catalog  *catalog.Catalog
	admins   map[int64]struct{}
	gallery  *gallery.Store
	reviews  *reviews.Service
	sheets   *export.SheetsExporter
	events   eventPublisher
	logger   *zerolog.Logger

	pendingPhotos  pendingPhotoStore
	pendingReviews pendingReviewStore
}

// Deps carries everything the bot needs besides the Telegram client.
// Sheets and Events may be nil.
type Deps struct {
	Machine *booking.Machine
	DB      *db.DB
	Catalog *catalog.Catalog
	Admins  []int64
	Gallery *gallery.Store
	Reviews *reviews.Service
	Sheets  *export.SheetsExporter
	Events  *events.Bus
	Logger  *zerolog.Logger
}

// New connects to Telegram with the given token.
func New(token string, deps Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newBot(&realTelegramClient{api: api}, deps)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for
// tests.
func NewWithTelegramClient(tg telegramClient, deps Deps) (*Bot, error) {
	return newBot(tg, deps)
}

func newBot(tg telegramClient, deps Deps) (*Bot, error) {
	if tg == nil {
		return nil, errors.New("telegram client is nil")
	}
	admins := make(map[int64]struct{}, len(deps.Admins))
	for _, id := range deps.Admins {
		admins[id] = struct{}{}
	}
	var ev eventPublisher
	if deps.Events != nil {
		ev = deps.Events
	}
	return &Bot{
		tg:             tg,
		machine:        deps.Machine,
		db:             deps.DB,
		catalog:        deps.Catalog,
		admins:         admins,
		gallery:        deps.Gallery,
		reviews:        deps.Reviews,
		sheets:         deps.Sheets,
		events:         ev,
		logger:         deps.Logger,
		pendingPhotos:  pendingPhotoStore{m: make(map[int64]pendingPhoto)},
		pendingReviews: pendingReviewStore{m: make(map[int64]*reviewDraft)},
	}, nil
}

// Sender exposes the outgoing Telegram surface for notifiers.
func (b *Bot) Sender() interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
} {
	return b.tg
}

func (b *Bot) isAdmin(userID int64) bool {
	_, ok := b.admins[userID]
	return ok
}

// authorizeAdmin gates admin operations on the config allow-list.
func (b *Bot) authorizeAdmin(userID int64) error {
	if !b.isAdmin(userID) {
		return ErrUnauthorized
	}
	return nil
}

// Start begins polling updates until ctx is done. Updates are handled in
// receipt order; the session store additionally serializes per user.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			b.HandleUpdate(ctx, &update)
		}
	}
}

// HandleUpdate routes a single update. Exported for tests.
func (b *Bot) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.logger.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if msg.Photo != nil && b.isAdmin(userID) {
		b.handleAdminPhoto(ctx, msg)
		return
	}

	if strings.HasPrefix(text, "/") {
		switch {
		case strings.HasPrefix(text, "/start"):
			b.machine.Cancel(userID)
			b.pendingReviews.clear(userID)
			b.sendMainMenu(chatID)
			return
		case strings.HasPrefix(text, "/cancel"):
			b.machine.Cancel(userID)
			b.pendingReviews.clear(userID)
			metrics.IncBookingCancelled()
			b.reply(chatID, "❌ Запись отменена.")
			b.sendMainMenu(chatID)
			return
		case strings.HasPrefix(text, "/admin_calendar"):
			b.handleAdminCalendar(ctx, msg)
			return
		case strings.HasPrefix(text, "/admin_export"):
			b.handleAdminExport(ctx, msg)
			return
		case strings.HasPrefix(text, "/admin_sync"):
			b.handleAdminSync(ctx, msg)
			return
		case strings.HasPrefix(text, "/admin_add_photo"):
			b.handleAdminAddPhoto(msg)
			return
		}
		return
	}

	// Review text step takes the next free-form message.
	if b.handleReviewText(ctx, msg) {
		return
	}

	// Typed date entry while the booking dialog waits for one.
	if s := b.machine.Sessions().Get(userID); s != nil && s.State == booking.StateSelectingDate {
		prompt, err := b.machine.SelectDate(userID, text)
		b.renderOutcome(chatID, userID, prompt, err)
		return
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}
	_ = b.answerCallback(cq.ID, "")

	userID := cq.From.ID
	chatID := cq.Message.Chat.ID
	userName := displayName(cq.From)
	action := ParseCallback(cq.Data)

	switch action.Kind {
	case ActionMainMenu:
		b.machine.Cancel(userID)
		b.pendingReviews.clear(userID)
		b.sendMainMenu(chatID)
	case ActionStartBooking:
		prompt := b.machine.Start(userID, userName)
		b.renderPrompt(chatID, prompt)
	case ActionSelectPhotographer:
		prompt, err := b.machine.SelectPhotographer(userID, action.PhotographerID)
		b.renderOutcome(chatID, userID, prompt, err)
	case ActionSelectDate:
		prompt, err := b.machine.SelectDate(userID, action.Date)
		b.renderOutcome(chatID, userID, prompt, err)
	case ActionSelectTime:
		prompt, err := b.machine.SelectTime(userID, action.SlotID)
		b.renderOutcome(chatID, userID, prompt, err)
	case ActionBackToPhotographers:
		prompt, err := b.machine.BackToPhotographers(userID)
		b.renderOutcome(chatID, userID, prompt, err)
	case ActionBackToDates:
		prompt, err := b.machine.BackToDates(userID)
		b.renderOutcome(chatID, userID, prompt, err)
	case ActionConfirmBooking:
		prompt, err := b.machine.Confirm(ctx, userID)
		if err == nil {
			metrics.IncBookingCreated()
		}
		b.renderOutcome(chatID, userID, prompt, err)
	case ActionCancelBooking:
		prompt := b.machine.Cancel(userID)
		metrics.IncBookingCancelled()
		b.renderPrompt(chatID, prompt)
	case ActionMyBookings:
		b.handleMyBookings(ctx, chatID, userID)
	case ActionShowPrice:
		b.sendPriceList(chatID)
	case ActionShowReviews:
		b.handleShowReviews(ctx, chatID)
	case ActionLeaveReview:
		b.startReviewFlow(chatID, userID)
	case ActionReviewPhotographer:
		b.handleReviewPhotographer(chatID, userID, action.PhotographerID)
	case ActionReviewRating:
		b.handleReviewRating(chatID, userID, action.Rating)
	case ActionShowGallery:
		b.sendGalleryMenu(chatID)
	case ActionGalleryPage:
		b.sendGalleryPage(chatID, action.PhotographerID, action.Page)
	case ActionAdminConfirm:
		b.handleAdminDecision(ctx, chatID, userID, action.AppointmentID, models.StatusConfirmed)
	case ActionAdminCancel:
		b.handleAdminDecision(ctx, chatID, userID, action.AppointmentID, models.StatusCancelled)
	}
}

// renderOutcome sends either the next prompt or a validation hint. On
// validation errors the machine keeps its state, so the user just tries
// again.
func (b *Bot) renderOutcome(chatID, userID int64, prompt booking.Prompt, err error) {
	if err == nil {
		b.renderPrompt(chatID, prompt)
		return
	}
	switch {
	case errors.Is(err, booking.ErrInvalidFormat):
		b.reply(chatID, "❌ Неверный формат даты!\n\nВведите дату в формате YYYY-MM-DD.")
	case errors.Is(err, booking.ErrDateInPast):
		b.reply(chatID, "❌ Нельзя записаться на прошедшую дату.\n\nВыберите другую дату.")
	case errors.Is(err, booking.ErrInvalidSelection):
		b.reply(chatID, "❌ Неверный выбор. Используйте кнопки ниже.")
	case errors.Is(err, booking.ErrNoActiveSession):
		b.reply(chatID, "Сессия записи не найдена. Начните заново.")
		b.sendMainMenu(chatID)
	case errors.Is(err, booking.ErrIncompleteBooking):
		b.reply(chatID, "❌ Данные записи неполные. Начните запись заново.")
		b.sendMainMenu(chatID)
	case errors.Is(err, booking.ErrStorageUnavailable):
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("booking commit failed")
		b.reply(chatID, "⚠️ Не удалось сохранить запись. Попробуйте подтвердить ещё раз.")
	default:
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("booking flow error")
		b.reply(chatID, "⚠️ Что-то пошло не так. Попробуйте ещё раз.")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	_, _ = b.tg.Send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) answerCallback(id, text string) error {
	_, err := b.tg.Request(tgbotapi.NewCallback(id, text))
	return err
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return "Пользователь"
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	if name == "" {
		name = "Пользователь"
	}
	return name
}

// pendingPhotoStore tracks admins who announced a portfolio upload and
// whose next photo message should be captured.
type pendingPhoto struct {
	PhotographerID string
	Caption        string
}

type pendingPhotoStore struct {
	mu sync.Mutex
	m  map[int64]pendingPhoto
}

func (s *pendingPhotoStore) set(userID int64, p pendingPhoto) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = p
}

func (s *pendingPhotoStore) take(userID int64) (pendingPhoto, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[userID]
	if ok {
		delete(s.m, userID)
	}
	return p, ok
}
