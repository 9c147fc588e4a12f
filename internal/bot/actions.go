package bot

import (
	"strconv"
	"strings"
)

// ActionKind tags inbound user actions. Callback payload parsing lives
// here at the transport edge; the state machine only ever sees typed
// actions, never raw callback strings.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionMainMenu
	ActionStartBooking
	ActionSelectPhotographer
	ActionSelectDate
	ActionSelectTime
	ActionBackToPhotographers
	ActionBackToDates
	ActionConfirmBooking
	ActionCancelBooking
	ActionMyBookings
	ActionShowPrice
	ActionShowReviews
	ActionLeaveReview
	ActionReviewPhotographer
	ActionReviewRating
	ActionShowGallery
	ActionGalleryPage
	ActionAdminConfirm
	ActionAdminCancel
)

// Action is one parsed user action.
type Action struct {
	Kind           ActionKind
	PhotographerID string
	Date           string
	SlotID         string
	AppointmentID  int64
	Rating         int
	Page           int
}

// ParseCallback maps raw callback data onto a tagged Action. Unknown
// payloads come back as ActionNone and are ignored by the router.
func ParseCallback(data string) Action {
	switch data {
	case "main_menu":
		return Action{Kind: ActionMainMenu}
	case "booking":
		return Action{Kind: ActionStartBooking}
	case "book_back_to_photographers":
		return Action{Kind: ActionBackToPhotographers}
	case "book_back_to_calendar":
		return Action{Kind: ActionBackToDates}
	case "book_confirm":
		return Action{Kind: ActionConfirmBooking}
	case "book_cancel":
		return Action{Kind: ActionCancelBooking}
	case "my_bookings":
		return Action{Kind: ActionMyBookings}
	case "price":
		return Action{Kind: ActionShowPrice}
	case "reviews":
		return Action{Kind: ActionShowReviews}
	case "review_add":
		return Action{Kind: ActionLeaveReview}
	case "gallery":
		return Action{Kind: ActionShowGallery}
	}

	switch {
	case strings.HasPrefix(data, "book_photographer_"):
		return Action{Kind: ActionSelectPhotographer, PhotographerID: strings.TrimPrefix(data, "book_photographer_")}
	case strings.HasPrefix(data, "book_date_"):
		return Action{Kind: ActionSelectDate, Date: strings.TrimPrefix(data, "book_date_")}
	case strings.HasPrefix(data, "book_time_"):
		return Action{Kind: ActionSelectTime, SlotID: strings.TrimPrefix(data, "book_time_")}
	case strings.HasPrefix(data, "review_photographer_"):
		return Action{Kind: ActionReviewPhotographer, PhotographerID: strings.TrimPrefix(data, "review_photographer_")}
	case strings.HasPrefix(data, "review_rating_"):
		rating, err := strconv.Atoi(strings.TrimPrefix(data, "review_rating_"))
		if err != nil {
			return Action{}
		}
		return Action{Kind: ActionReviewRating, Rating: rating}
	case strings.HasPrefix(data, "gallery_"):
		rest := strings.TrimPrefix(data, "gallery_")
		idx := strings.LastIndex(rest, "_")
		if idx <= 0 {
			return Action{}
		}
		page, err := strconv.Atoi(rest[idx+1:])
		if err != nil {
			return Action{}
		}
		return Action{Kind: ActionGalleryPage, PhotographerID: rest[:idx], Page: page}
	case strings.HasPrefix(data, "admin_confirm_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "admin_confirm_"), 10, 64)
		if err != nil {
			return Action{}
		}
		return Action{Kind: ActionAdminConfirm, AppointmentID: id}
	case strings.HasPrefix(data, "admin_cancel_"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "admin_cancel_"), 10, 64)
		if err != nil {
			return Action{}
		}
		return Action{Kind: ActionAdminCancel, AppointmentID: id}
	}
	return Action{}
}
