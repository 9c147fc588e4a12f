package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"fotobook/internal/catalog"
	"fotobook/internal/events"
	"fotobook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	appts   []models.Appointment
	nextID  int64
	failErr error
}

func (f *fakeStore) AddAppointment(_ context.Context, a *models.Appointment) (int64, error) {
	if f.failErr != nil {
		return 0, f.failErr
	}
	f.nextID++
	stored := *a
	stored.ID = f.nextID
	f.appts = append(f.appts, stored)
	return f.nextID, nil
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Photographer{
		{ID: "anna", Name: "Анна Петрова", Price: 5000},
		{ID: "ivan", Name: "Иван Смирнов", Price: 7000},
	})
}

// newTestMachine builds a machine with a frozen clock: "today" is
// 2025-01-01. The machine reads the session store's clock, so freezing
// it covers state stamps, commit timestamps, and idle expiry alike.
func newTestMachine(store AppointmentStore, bus EventPublisher) *Machine {
	sessions := NewSessionStore(time.Minute)
	sessions.now = func() time.Time {
		return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	return NewMachine(sessions, store, testCatalog(), bus)
}

// sessionState reads the current dialog state, failing the test when the
// session is unexpectedly gone.
func sessionState(t *testing.T, m *Machine, userID int64) State {
	t.Helper()
	s := m.Sessions().Get(userID)
	require.NotNil(t, s, "session missing for user %d", userID)
	return s.State
}

func TestBookingHappyPath(t *testing.T) {
	store := &fakeStore{}
	bus := events.NewBus()
	var published []events.Event
	bus.Subscribe(events.BookingCreated, func(e events.Event) {
		published = append(published, e)
	})
	m := newTestMachine(store, bus)

	p := m.Start(7, "Анна Клиент")
	assert.Equal(t, PromptPhotographers, p.Kind)
	assert.Len(t, p.Photographers, 2)

	p, err := m.SelectPhotographer(7, "anna")
	require.NoError(t, err)
	assert.Equal(t, PromptDate, p.Kind)
	assert.Equal(t, "anna", p.Draft.PhotographerID)

	p, err = m.SelectDate(7, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, PromptTimeSlots, p.Kind)
	assert.Len(t, p.Slots, 3)

	p, err = m.SelectTime(7, "14:00")
	require.NoError(t, err)
	assert.Equal(t, PromptConfirm, p.Kind)
	assert.Equal(t, "14:00", p.Draft.TimeSlot)

	p, err = m.Confirm(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, PromptCommitted, p.Kind)
	assert.Equal(t, int64(1), p.AppointmentID)

	require.Len(t, store.appts, 1)
	got := store.appts[0]
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "Анна Клиент", got.UserName)
	assert.Equal(t, "anna", got.PhotographerID)
	assert.Equal(t, "Анна Петрова", got.PhotographerName)
	assert.Equal(t, "2025-03-10", got.DateText())
	assert.Equal(t, "14:00", got.TimeSlot)
	assert.Equal(t, models.StatusNew, got.Status)

	require.Len(t, published, 1)
	appt, ok := published[0].Payload.(*models.Appointment)
	require.True(t, ok)
	assert.Equal(t, int64(1), appt.ID)

	// The session is gone: confirming again cannot double-append.
	_, err = m.Confirm(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Len(t, store.appts, 1)
}

func TestSelectDateValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"wrong format", "10.03.2025", ErrInvalidFormat},
		{"garbage", "tomorrow", ErrInvalidFormat},
		{"past date", "2024-12-31", ErrDateInPast},
		{"distant past", "2024-01-01", ErrDateInPast},
		{"today is allowed", "2025-01-01", nil},
		{"future", "2025-06-15", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(&fakeStore{}, nil)
			m.Start(1, "u")
			_, err := m.SelectPhotographer(1, "anna")
			require.NoError(t, err)

			_, err = m.SelectDate(1, tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.Equal(t, StateSelectingTime, sessionState(t, m, 1))
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
				// Rejected input leaves the dialog where it was.
				assert.Equal(t, StateSelectingDate, sessionState(t, m, 1))
			}
		})
	}
}

func TestInvalidSelections(t *testing.T) {
	m := newTestMachine(&fakeStore{}, nil)
	m.Start(1, "u")

	_, err := m.SelectPhotographer(1, "nobody")
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, StateSelectingPhotographer, sessionState(t, m, 1))

	_, err = m.SelectPhotographer(1, "anna")
	require.NoError(t, err)
	_, err = m.SelectDate(1, "2025-03-10")
	require.NoError(t, err)

	_, err = m.SelectTime(1, "23:00")
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, StateSelectingTime, sessionState(t, m, 1))
}

func TestInputForWrongState(t *testing.T) {
	m := newTestMachine(&fakeStore{}, nil)
	m.Start(1, "u")

	// Dialog is at photographer selection; a slot press is stale.
	p, err := m.SelectTime(1, "14:00")
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Equal(t, PromptPhotographers, p.Kind, "user is re-prompted for the current step")
	assert.Equal(t, StateSelectingPhotographer, sessionState(t, m, 1))

	// Confirm before any selection is equally rejected.
	_, err = m.Confirm(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestOperationsWithoutSession(t *testing.T) {
	m := newTestMachine(&fakeStore{}, nil)

	_, err := m.SelectPhotographer(9, "anna")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = m.SelectDate(9, "2025-03-10")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = m.SelectTime(9, "14:00")
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = m.Confirm(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestCancel(t *testing.T) {
	store := &fakeStore{}
	m := newTestMachine(store, nil)

	m.Start(1, "u")
	_, err := m.SelectPhotographer(1, "anna")
	require.NoError(t, err)

	p := m.Cancel(1)
	assert.Equal(t, PromptCancelled, p.Kind)
	assert.Nil(t, m.Sessions().Get(1))
	assert.Empty(t, store.appts, "cancel must not write to the store")

	// Cancel is idempotent, with or without a session.
	p = m.Cancel(1)
	assert.Equal(t, PromptCancelled, p.Kind)

	_, err = m.Confirm(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestConfirmStorageFailureKeepsSession(t *testing.T) {
	store := &fakeStore{failErr: errors.New("disk full")}
	m := newTestMachine(store, nil)

	m.Start(1, "u")
	_, err := m.SelectPhotographer(1, "ivan")
	require.NoError(t, err)
	_, err = m.SelectDate(1, "2025-03-10")
	require.NoError(t, err)
	_, err = m.SelectTime(1, "10:00")
	require.NoError(t, err)

	_, err = m.Confirm(context.Background(), 1)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	// Selections survive the failure, so the retry succeeds without
	// re-entering anything.
	s := m.Sessions().Get(1)
	require.NotNil(t, s)
	assert.Equal(t, StateConfirming, s.State)
	assert.Equal(t, "ivan", s.Draft.PhotographerID)

	store.failErr = nil
	p, err := m.Confirm(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.AppointmentID)
	require.Len(t, store.appts, 1)
	assert.Equal(t, "10:00", store.appts[0].TimeSlot)
}

func TestBackNavigation(t *testing.T) {
	m := newTestMachine(&fakeStore{}, nil)
	m.Start(1, "u")
	_, err := m.SelectPhotographer(1, "anna")
	require.NoError(t, err)
	_, err = m.SelectDate(1, "2025-03-10")
	require.NoError(t, err)

	// Back from slot selection keeps the chosen photographer.
	p, err := m.BackToDates(1)
	require.NoError(t, err)
	assert.Equal(t, PromptDate, p.Kind)
	assert.Equal(t, "anna", p.Draft.PhotographerID)

	p, err = m.BackToPhotographers(1)
	require.NoError(t, err)
	assert.Equal(t, PromptPhotographers, p.Kind)

	// Back is only valid from its own step.
	_, err = m.BackToDates(1)
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestRestartReplacesSession(t *testing.T) {
	m := newTestMachine(&fakeStore{}, nil)
	m.Start(1, "u")
	_, err := m.SelectPhotographer(1, "anna")
	require.NoError(t, err)

	p := m.Start(1, "u")
	assert.Equal(t, PromptPhotographers, p.Kind)
	assert.Empty(t, p.Draft.PhotographerID, "restart discards prior selections")
}

func TestSessionExpiryFollowsStoreClock(t *testing.T) {
	store := &fakeStore{}
	m := NewMachine(NewSessionStore(time.Minute), store, testCatalog(), nil)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	current := base
	m.sessions.now = func() time.Time { return current }

	m.Start(1, "u")
	_, err := m.SelectPhotographer(1, "anna")
	require.NoError(t, err)

	// Stamps and expiry share the clock: the session stays live however
	// long the wall clock ran, as long as the injected clock stands still.
	assert.Equal(t, StateSelectingDate, sessionState(t, m, 1))

	// Advancing the clock within the timeout keeps it live.
	current = base.Add(30 * time.Second)
	_, err = m.SelectDate(1, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, StateSelectingTime, sessionState(t, m, 1))

	// Idling past the timeout expires it.
	current = current.Add(2 * time.Minute)
	assert.Nil(t, m.Sessions().Get(1))
	_, err = m.SelectTime(1, "14:00")
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestConfirmPublishesOutsideSessionLock(t *testing.T) {
	store := &fakeStore{}
	bus := events.NewBus()
	m := newTestMachine(store, bus)

	// The subscriber re-enters the same user's critical section, as the
	// notification fan-out path may. This deadlocks if Confirm published
	// while still holding the user's lock.
	reentered := false
	bus.Subscribe(events.BookingCreated, func(events.Event) {
		m.Sessions().Do(7, func() { reentered = true })
	})

	m.Start(7, "u")
	_, err := m.SelectPhotographer(7, "anna")
	require.NoError(t, err)
	_, err = m.SelectDate(7, "2025-03-10")
	require.NoError(t, err)
	_, err = m.SelectTime(7, "14:00")
	require.NoError(t, err)

	p, err := m.Confirm(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, PromptCommitted, p.Kind)
	assert.True(t, reentered, "subscriber ran and acquired the user lock")
}

func TestSequentialIDs(t *testing.T) {
	store := &fakeStore{}
	m := newTestMachine(store, nil)

	for i, userID := range []int64{10, 20, 30} {
		m.Start(userID, "u")
		_, err := m.SelectPhotographer(userID, "anna")
		require.NoError(t, err)
		_, err = m.SelectDate(userID, "2025-03-10")
		require.NoError(t, err)
		_, err = m.SelectTime(userID, "14:00")
		require.NoError(t, err)
		p, err := m.Confirm(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), p.AppointmentID)
	}
}
