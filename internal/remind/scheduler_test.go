package remind

import (
	"context"
	"testing"
	"time"

	"fotobook/internal/db"
	"fotobook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func newTestScheduler(t *testing.T) (*Scheduler, *fakeSender, *db.DB) {
	t.Helper()
	database, err := db.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	sender := &fakeSender{}
	logger := zerolog.Nop()
	s := NewScheduler(database, sender, 9, &logger)
	s.now = func() time.Time {
		return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	}
	return s, sender, database
}

func addAppointment(t *testing.T, database *db.DB, userID int64, day string, status models.Status) int64 {
	t.Helper()
	date, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	id, err := database.AddAppointment(context.Background(), &models.Appointment{
		UserID:           userID,
		UserName:         "Клиент",
		PhotographerID:   "anna",
		PhotographerName: "Анна Петрова",
		Date:             date,
		TimeSlot:         "14:00",
		Status:           models.StatusNew,
		CreatedAt:        time.Now().UTC(),
	})
	require.NoError(t, err)
	if status != models.StatusNew {
		require.NoError(t, database.UpdateAppointmentStatus(context.Background(), id, status))
	}
	return id
}

func TestSendDueRemindsConfirmedTomorrow(t *testing.T) {
	s, sender, database := newTestScheduler(t)
	ctx := context.Background()

	// Frozen "today" is 2025-03-09, so 2025-03-10 is due.
	addAppointment(t, database, 11, "2025-03-10", models.StatusConfirmed)
	addAppointment(t, database, 12, "2025-03-10", models.StatusNew)       // not confirmed
	addAppointment(t, database, 13, "2025-03-10", models.StatusCancelled) // cancelled
	addAppointment(t, database, 14, "2025-03-11", models.StatusConfirmed) // not tomorrow

	n := s.SendDue(ctx)
	assert.Equal(t, 1, n)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(11), sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "завтра")
	assert.Contains(t, sender.sent[0].Text, "Анна Петрова")
	assert.Contains(t, sender.sent[0].Text, "10.03.2025")
	assert.Contains(t, sender.sent[0].Text, "14:00-16:00")

	// A second pass within the same day sends nothing new.
	n = s.SendDue(ctx)
	assert.Zero(t, n)
	assert.Len(t, sender.sent, 1)
}

func TestUntilNextRun(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	// Frozen clock is 12:00; a 9 o'clock scheduler waits until tomorrow.
	assert.Equal(t, 21*time.Hour, s.untilNextRun())

	s.hour = 18
	assert.Equal(t, 6*time.Hour, s.untilNextRun())
}
