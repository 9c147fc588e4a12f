package models

import "time"

// Status describes the lifecycle of an appointment.
type Status string

const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Final reports whether the status is terminal. A finalized appointment
// never changes status again.
func (s Status) Final() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusNew || s == StatusConfirmed || s == StatusCancelled
}

// Appointment represents a committed photo session booking.
type Appointment struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	UserName         string    `json:"user_name"`
	PhotographerID   string    `json:"photographer_id"`
	PhotographerName string    `json:"photographer_name"`
	Date             time.Time `json:"date"`      // calendar day, time part is zero
	TimeSlot         string    `json:"time_slot"` // slot id, e.g. "14:00"
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// DateText returns the appointment day in YYYY-MM-DD form.
func (a *Appointment) DateText() string {
	return a.Date.Format("2006-01-02")
}
