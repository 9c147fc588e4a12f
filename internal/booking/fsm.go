// Package booking implements the booking conversation state machine:
// per-user dialog state, validated transitions, and the single commit
// path into the appointment store.
package booking

import "time"

// State represents the current step of the booking dialog.
type State string

const (
	StateSelectingPhotographer State = "selecting_photographer"
	StateSelectingDate         State = "selecting_date"
	StateSelectingTime         State = "selecting_time"
	StateConfirming            State = "confirming"
	StateCommitted             State = "committed"
	StateCancelled             State = "cancelled"
)

// transitions lists the allowed state changes. Each state accepts exactly
// one kind of input; everything else is rejected without a state change.
var transitions = map[State][]State{
	StateSelectingPhotographer: {StateSelectingDate, StateCancelled},
	StateSelectingDate:         {StateSelectingTime, StateSelectingPhotographer, StateCancelled},
	StateSelectingTime:         {StateConfirming, StateSelectingDate, StateCancelled},
	StateConfirming:            {StateCommitted, StateCancelled},
}

// CanTransition checks whether from -> to is an allowed transition.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Draft holds the selections accumulated during a booking dialog. Each
// field is set only by the transition that owns it.
type Draft struct {
	UserID         int64
	UserName       string
	PhotographerID string
	Date           time.Time // zero until selected
	TimeSlot       string
}

// Complete reports whether every selection required for commit is set.
func (d *Draft) Complete() bool {
	return d.PhotographerID != "" && !d.Date.IsZero() && d.TimeSlot != ""
}

// Session is one user's in-progress booking conversation.
type Session struct {
	State     State
	Draft     Draft
	StartedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a session at the first dialog step, stamped with
// the caller's clock.
func NewSession(userID int64, userName string, at time.Time) *Session {
	return &Session{
		State:     StateSelectingPhotographer,
		Draft:     Draft{UserID: userID, UserName: userName},
		StartedAt: at,
		UpdatedAt: at,
	}
}

// Expired checks whether the session has been idle longer than timeout
// as of now. The caller supplies the clock so expiry and state stamps
// always measure against the same time source.
func (s *Session) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(s.UpdatedAt) > timeout
}
