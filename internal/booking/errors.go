package booking

import "errors"

// Validation errors are recovered locally: the session stays in its
// current state and the user is re-prompted.
var (
	// ErrInvalidSelection means the input is not a known catalog id.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInvalidFormat means the date text does not parse as YYYY-MM-DD.
	ErrInvalidFormat = errors.New("invalid date format")

	// ErrDateInPast means the date parsed but is before the current day.
	ErrDateInPast = errors.New("date is in the past")

	// ErrIncompleteBooking means confirm was attempted on a session with
	// missing fields. Should not happen through normal transitions; the
	// session is cleared and the flow must be restarted.
	ErrIncompleteBooking = errors.New("incomplete booking")

	// ErrNoActiveSession means the user has no booking conversation in
	// progress for the requested operation.
	ErrNoActiveSession = errors.New("no active session")

	// ErrStorageUnavailable wraps a persistence failure on commit. The
	// session is kept so the user can retry confirm.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
