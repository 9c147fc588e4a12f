package booking

import (
	"context"
	"fmt"
	"time"

	"fotobook/internal/catalog"
	"fotobook/internal/events"
	"fotobook/internal/models"
)

// AppointmentStore is the single write path out of the booking flow.
type AppointmentStore interface {
	AddAppointment(ctx context.Context, a *models.Appointment) (int64, error)
}

// EventPublisher receives domain events. Delivery is best-effort and must
// never affect the state change that produced the event.
type EventPublisher interface {
	Publish(evType string, payload interface{})
}

// PromptKind identifies the logical next prompt for the user. Rendering
// into message text and buttons is the transport's job.
type PromptKind string

const (
	PromptPhotographers PromptKind = "photographers"
	PromptDate          PromptKind = "date"
	PromptTimeSlots     PromptKind = "time_slots"
	PromptConfirm       PromptKind = "confirm"
	PromptCommitted     PromptKind = "committed"
	PromptCancelled     PromptKind = "cancelled"
)

// Prompt describes the state the dialog is in and the options valid there.
type Prompt struct {
	Kind          PromptKind
	Photographers []catalog.Photographer
	Slots         []catalog.Slot
	Draft         Draft
	AppointmentID int64
}

// Machine drives booking conversations: it validates input, advances or
// rejects transitions, and commits a finished draft exactly once. It
// shares the session store's clock, so idle expiry and state stamps
// measure against the same time source.
type Machine struct {
	sessions *SessionStore
	store    AppointmentStore
	catalog  *catalog.Catalog
	events   EventPublisher
}

// NewMachine wires the state machine. events may be nil.
func NewMachine(sessions *SessionStore, store AppointmentStore, cat *catalog.Catalog, events EventPublisher) *Machine {
	return &Machine{
		sessions: sessions,
		store:    store,
		catalog:  cat,
		events:   events,
	}
}

// Sessions exposes the session store for lifecycle management (sweeping).
func (m *Machine) Sessions() *SessionStore { return m.sessions }

// Start begins a booking conversation, replacing any previous one.
func (m *Machine) Start(userID int64, userName string) Prompt {
	var p Prompt
	m.sessions.Do(userID, func() {
		s := m.sessions.Reset(userID, userName)
		p = m.promptFor(s)
	})
	return p
}

// SelectPhotographer records the photographer choice.
func (m *Machine) SelectPhotographer(userID int64, photographerID string) (Prompt, error) {
	var p Prompt
	var err error
	m.sessions.Do(userID, func() {
		s := m.sessions.Get(userID)
		if s == nil {
			err = ErrNoActiveSession
			return
		}
		if s.State != StateSelectingPhotographer {
			p, err = m.rejectInput(s)
			return
		}
		if _, ok := m.catalog.Photographer(photographerID); !ok {
			p, err = m.promptFor(s), ErrInvalidSelection
			return
		}
		s.Draft.PhotographerID = photographerID
		m.advance(s, StateSelectingDate)
		p = m.promptFor(s)
	})
	return p, err
}

// SelectDate parses and records the session date. The text must be an ISO
// calendar day no earlier than today.
func (m *Machine) SelectDate(userID int64, text string) (Prompt, error) {
	var p Prompt
	var err error
	m.sessions.Do(userID, func() {
		s := m.sessions.Get(userID)
		if s == nil {
			err = ErrNoActiveSession
			return
		}
		if s.State != StateSelectingDate {
			p, err = m.rejectInput(s)
			return
		}
		date, parseErr := time.Parse("2006-01-02", text)
		if parseErr != nil {
			p, err = m.promptFor(s), ErrInvalidFormat
			return
		}
		if date.Before(m.today()) {
			p, err = m.promptFor(s), ErrDateInPast
			return
		}
		s.Draft.Date = date
		m.advance(s, StateSelectingTime)
		p = m.promptFor(s)
	})
	return p, err
}

// SelectTime records the time-slot choice.
func (m *Machine) SelectTime(userID int64, slotID string) (Prompt, error) {
	var p Prompt
	var err error
	m.sessions.Do(userID, func() {
		s := m.sessions.Get(userID)
		if s == nil {
			err = ErrNoActiveSession
			return
		}
		if s.State != StateSelectingTime {
			p, err = m.rejectInput(s)
			return
		}
		if _, ok := catalog.SlotByID(slotID); !ok {
			p, err = m.promptFor(s), ErrInvalidSelection
			return
		}
		s.Draft.TimeSlot = slotID
		m.advance(s, StateConfirming)
		p = m.promptFor(s)
	})
	return p, err
}

// Confirm commits the completed draft as a new appointment. Append is
// at-most-once: the session is destroyed on success, so a second Confirm
// cannot reach the store. On storage failure the session is kept and the
// user can retry without re-entering the fields.
func (m *Machine) Confirm(ctx context.Context, userID int64) (Prompt, error) {
	var p Prompt
	var err error
	var committed *models.Appointment
	m.sessions.Do(userID, func() {
		s := m.sessions.Get(userID)
		if s == nil {
			err = ErrNoActiveSession
			return
		}
		if s.State != StateConfirming {
			p, err = m.rejectInput(s)
			return
		}
		if !s.Draft.Complete() {
			// Defensive: unreachable through normal transitions.
			m.sessions.Clear(userID)
			err = ErrIncompleteBooking
			return
		}
		appt := &models.Appointment{
			UserID:           s.Draft.UserID,
			UserName:         s.Draft.UserName,
			PhotographerID:   s.Draft.PhotographerID,
			PhotographerName: m.catalog.Name(s.Draft.PhotographerID),
			Date:             s.Draft.Date,
			TimeSlot:         s.Draft.TimeSlot,
			Status:           models.StatusNew,
			CreatedAt:        m.sessions.now(),
		}
		id, storeErr := m.store.AddAppointment(ctx, appt)
		if storeErr != nil {
			err = fmt.Errorf("%w: %v", ErrStorageUnavailable, storeErr)
			return
		}
		appt.ID = id
		committed = appt
		p = Prompt{Kind: PromptCommitted, Draft: s.Draft, AppointmentID: id}
		m.sessions.Clear(userID)
	})
	// Publish outside the per-user critical section: subscribers can be
	// slow (rate-limited fan-out) and must not delay the user's next
	// action or re-enter the lock.
	if committed != nil && m.events != nil {
		m.events.Publish(events.BookingCreated, committed)
	}
	return p, err
}

// Cancel aborts the conversation from any non-terminal state. No store
// writes happen; cancelling without a session is a no-op.
func (m *Machine) Cancel(userID int64) Prompt {
	var p Prompt
	m.sessions.Do(userID, func() {
		m.sessions.Clear(userID)
		p = Prompt{Kind: PromptCancelled}
	})
	return p
}

// BackToPhotographers returns from date selection to photographer
// selection.
func (m *Machine) BackToPhotographers(userID int64) (Prompt, error) {
	return m.back(userID, StateSelectingDate, StateSelectingPhotographer)
}

// BackToDates returns from time selection to date selection, preserving
// the chosen photographer.
func (m *Machine) BackToDates(userID int64) (Prompt, error) {
	return m.back(userID, StateSelectingTime, StateSelectingDate)
}

func (m *Machine) back(userID int64, from, to State) (Prompt, error) {
	var p Prompt
	var err error
	m.sessions.Do(userID, func() {
		s := m.sessions.Get(userID)
		if s == nil {
			err = ErrNoActiveSession
			return
		}
		if s.State != from || !CanTransition(from, to) {
			p, err = m.rejectInput(s)
			return
		}
		m.advance(s, to)
		p = m.promptFor(s)
	})
	return p, err
}

// advance moves the session to the next state and refreshes the idle
// timestamp.
func (m *Machine) advance(s *Session, to State) {
	s.State = to
	s.UpdatedAt = m.sessions.now()
}

// rejectInput handles input that the current state does not accept: the
// state is unchanged and the caller is re-prompted for the current step.
func (m *Machine) rejectInput(s *Session) (Prompt, error) {
	return m.promptFor(s), ErrInvalidSelection
}

func (m *Machine) promptFor(s *Session) Prompt {
	p := Prompt{Draft: s.Draft}
	switch s.State {
	case StateSelectingPhotographer:
		p.Kind = PromptPhotographers
		p.Photographers = m.catalog.Photographers()
	case StateSelectingDate:
		p.Kind = PromptDate
	case StateSelectingTime:
		p.Kind = PromptTimeSlots
		p.Slots = catalog.Slots()
	case StateConfirming:
		p.Kind = PromptConfirm
	case StateCancelled:
		p.Kind = PromptCancelled
	}
	return p
}

func (m *Machine) today() time.Time {
	now := m.sessions.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
