package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fotobook/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// The review dialog mirrors the booking flow on a smaller scale:
// photographer, then rating, then free-form text. Its pending state lives
// in an explicit store with the same lifecycle rules as booking sessions.

type reviewStep int

const (
	reviewStepPhotographer reviewStep = iota
	reviewStepRating
	reviewStepText
)

type reviewDraft struct {
	Step           reviewStep
	PhotographerID string
	Rating         int
}

type pendingReviewStore struct {
	mu sync.Mutex
	m  map[int64]*reviewDraft
}

func (s *pendingReviewStore) set(userID int64, d *reviewDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = d
}

func (s *pendingReviewStore) get(userID int64) *reviewDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID]
}

func (s *pendingReviewStore) clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, userID)
}

// handleShowReviews lists photographer ratings.
func (b *Bot) handleShowReviews(ctx context.Context, chatID int64) {
	text := "⭐ Отзывы о наших фотографах:\n\n"
	for _, p := range b.catalog.Photographers() {
		avg, count, err := b.reviews.Rating(ctx, p.ID)
		if err != nil {
			b.logger.Error().Err(err).Str("photographer", p.ID).Msg("rating lookup failed")
			continue
		}
		if count == 0 {
			text += fmt.Sprintf("📸 %s — пока нет отзывов\n", p.Name)
		} else {
			text += fmt.Sprintf("📸 %s — %.1f ⭐ (%d)\n", p.Name, avg, count)
		}
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("✍️ Оставить отзыв", "review_add")),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Главное меню", "main_menu")),
	)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) startReviewFlow(chatID, userID int64) {
	b.pendingReviews.set(userID, &reviewDraft{Step: reviewStepPhotographer})
	msg := tgbotapi.NewMessage(chatID, "✍️ Отзыв\n\nВыберите фотографа:")
	msg.ReplyMarkup = photographersKeyboard(b.catalog.Photographers(), "review_photographer_", "reviews")
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleReviewPhotographer(chatID, userID int64, photographerID string) {
	d := b.pendingReviews.get(userID)
	if d == nil || d.Step != reviewStepPhotographer {
		return
	}
	if _, ok := b.catalog.Photographer(photographerID); !ok {
		b.reply(chatID, "❌ Фотограф не найден!")
		return
	}
	d.PhotographerID = photographerID
	d.Step = reviewStepRating

	row := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for i := 1; i <= 5; i++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strings.Repeat("⭐", i), fmt.Sprintf("review_rating_%d", i)))
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Оцените работу %s:", b.catalog.Name(photographerID)))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	_, _ = b.tg.Send(msg)
}

func (b *Bot) handleReviewRating(chatID, userID int64, rating int) {
	d := b.pendingReviews.get(userID)
	if d == nil || d.Step != reviewStepRating {
		return
	}
	if rating < 1 || rating > 5 {
		b.reply(chatID, "❌ Оценка должна быть от 1 до 5.")
		return
	}
	d.Rating = rating
	d.Step = reviewStepText
	b.reply(chatID, "Напишите текст отзыва одним сообщением:")
}

// handleReviewText consumes a free-form message when the user is at the
// text step. Returns false when no review is pending.
func (b *Bot) handleReviewText(ctx context.Context, msg *tgbotapi.Message) bool {
	userID := msg.From.ID
	d := b.pendingReviews.get(userID)
	if d == nil || d.Step != reviewStepText {
		return false
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		b.reply(msg.Chat.ID, "Текст отзыва не может быть пустым.")
		return true
	}

	_, err := b.reviews.Add(ctx, userID, displayName(msg.From), d.PhotographerID, d.Rating, text)
	if err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("review save failed")
		b.reply(msg.Chat.ID, "⚠️ Не удалось сохранить отзыв.")
		return true
	}
	b.pendingReviews.clear(userID)
	metrics.IncReviewCreated()

	out := tgbotapi.NewMessage(msg.Chat.ID, "✅ Спасибо за отзыв!")
	out.ReplyMarkup = backToMainKeyboard()
	_, _ = b.tg.Send(out)
	return true
}
