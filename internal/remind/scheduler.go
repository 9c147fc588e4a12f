// Package remind sends next-day reminders for confirmed photo sessions.
package remind

import (
	"context"
	"fmt"
	"time"

	"fotobook/internal/catalog"
	"fotobook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Store supplies the appointments of one calendar day.
type Store interface {
	AppointmentsByDate(ctx context.Context, day time.Time) ([]models.Appointment, error)
}

// Sender is the outgoing Telegram surface.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Scheduler wakes up once a day and reminds every client with a
// confirmed session tomorrow. Reminders are best-effort: a failed send
// is logged and retried on the next pass.
type Scheduler struct {
	db      Store
	tg      Sender
	limiter *rate.Limiter
	logger  *zerolog.Logger
	hour    int
	now     func() time.Time

	// Appointment ids reminded during this process lifetime. Enough to
	// keep the daily pass idempotent; a restart at worst repeats one
	// reminder.
	sent map[int64]struct{}
}

// NewScheduler creates a reminder scheduler firing at the given local
// hour (0..23).
func NewScheduler(db Store, tg Sender, hour int, logger *zerolog.Logger) *Scheduler {
	if hour < 0 || hour > 23 {
		hour = 9
	}
	return &Scheduler{
		db:      db,
		tg:      tg,
		limiter: rate.NewLimiter(rate.Limit(20), 30),
		logger:  logger,
		hour:    hour,
		now:     time.Now,
		sent:    make(map[int64]struct{}),
	}
}

// Start blocks until ctx is done, waking at the configured hour each day.
func (s *Scheduler) Start(ctx context.Context) {
	timer := time.NewTimer(s.untilNextRun())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			n := s.SendDue(ctx)
			if n > 0 {
				s.logger.Info().Int("reminders", n).Msg("reminders sent")
			}
			timer.Reset(s.untilNextRun())
		}
	}
}

// SendDue reminds every confirmed appointment scheduled for tomorrow and
// returns how many reminders went out.
func (s *Scheduler) SendDue(ctx context.Context) int {
	tomorrow := s.today().AddDate(0, 0, 1)
	appts, err := s.db.AppointmentsByDate(ctx, tomorrow)
	if err != nil {
		s.logger.Error().Err(err).Msg("reminder: load appointments failed")
		return 0
	}

	sent := 0
	for _, a := range appts {
		if a.Status != models.StatusConfirmed {
			continue
		}
		if _, done := s.sent[a.ID]; done {
			continue
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return sent
		}
		msg := tgbotapi.NewMessage(a.UserID, reminderText(&a))
		if _, err := s.tg.Send(msg); err != nil {
			s.logger.Warn().Err(err).Int64("appointment_id", a.ID).Msg("reminder send failed")
			continue
		}
		s.sent[a.ID] = struct{}{}
		sent++
	}
	return sent
}

func reminderText(a *models.Appointment) string {
	return fmt.Sprintf(
		"🔔 Напоминание: завтра у вас фотосессия!\n\n📸 %s\n📅 %s 🕐 %s",
		a.PhotographerName, a.Date.Format("02.01.2006"), catalog.SlotLabel(a.TimeSlot),
	)
}

func (s *Scheduler) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// untilNextRun returns the wait until the next occurrence of the
// configured hour.
func (s *Scheduler) untilNextRun() time.Duration {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
