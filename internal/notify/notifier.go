// Package notify delivers admin and user notifications over Telegram.
// Delivery is fire-and-forget: failures are logged and swallowed, never
// rolled back into the booking or status change that triggered them.
package notify

import (
	"context"
	"fmt"

	"fotobook/internal/catalog"
	"fotobook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Sender is the outgoing Telegram surface.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends best-effort notifications with a shared rate limit so
// admin fan-out cannot trip Telegram's flood control.
type Notifier struct {
	tg      Sender
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// New creates a notifier. The default limit matches Telegram's ~30
// messages per second bot-wide budget with headroom.
func New(tg Sender, logger *zerolog.Logger) *Notifier {
	return &Notifier{
		tg:      tg,
		limiter: rate.NewLimiter(rate.Limit(20), 30),
		logger:  logger,
	}
}

// BookingCreated alerts every admin about a freshly committed appointment.
func (n *Notifier) BookingCreated(ctx context.Context, adminIDs []int64, appt *models.Appointment) {
	text := fmt.Sprintf(
		"🆕 Новая запись #%d\n\n📸 %s\n📅 %s 🕐 %s\n👤 %s",
		appt.ID, appt.PhotographerName, formatDate(appt), catalog.SlotLabel(appt.TimeSlot), appt.UserName,
	)
	for _, adminID := range adminIDs {
		n.send(ctx, adminID, text)
	}
}

// StatusChanged tells the booking's owner about an admin decision.
func (n *Notifier) StatusChanged(ctx context.Context, appt *models.Appointment) {
	var text string
	switch appt.Status {
	case models.StatusConfirmed:
		text = fmt.Sprintf("✅ Ваша запись #%d подтверждена!\n\n📸 %s\n📅 %s 🕐 %s",
			appt.ID, appt.PhotographerName, formatDate(appt), catalog.SlotLabel(appt.TimeSlot))
	case models.StatusCancelled:
		text = fmt.Sprintf("❌ Ваша запись #%d отменена.\n\n📸 %s\n📅 %s 🕐 %s",
			appt.ID, appt.PhotographerName, formatDate(appt), catalog.SlotLabel(appt.TimeSlot))
	default:
		return
	}
	n.send(ctx, appt.UserID, text)
}

func (n *Notifier) send(ctx context.Context, chatID int64, text string) {
	if err := n.limiter.Wait(ctx); err != nil {
		n.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("notification dropped")
		return
	}
	if _, err := n.tg.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		n.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("notification send failed")
	}
}

func formatDate(appt *models.Appointment) string {
	return appt.Date.Format("02.01.2006")
}
