package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Action
	}{
		{"main menu", "main_menu", Action{Kind: ActionMainMenu}},
		{"start booking", "booking", Action{Kind: ActionStartBooking}},
		{"photographer", "book_photographer_anna", Action{Kind: ActionSelectPhotographer, PhotographerID: "anna"}},
		{"date", "book_date_2025-03-10", Action{Kind: ActionSelectDate, Date: "2025-03-10"}},
		{"time", "book_time_14:00", Action{Kind: ActionSelectTime, SlotID: "14:00"}},
		{"back to photographers", "book_back_to_photographers", Action{Kind: ActionBackToPhotographers}},
		{"back to calendar", "book_back_to_calendar", Action{Kind: ActionBackToDates}},
		{"confirm", "book_confirm", Action{Kind: ActionConfirmBooking}},
		{"cancel", "book_cancel", Action{Kind: ActionCancelBooking}},
		{"my bookings", "my_bookings", Action{Kind: ActionMyBookings}},
		{"price", "price", Action{Kind: ActionShowPrice}},
		{"reviews", "reviews", Action{Kind: ActionShowReviews}},
		{"leave review", "review_add", Action{Kind: ActionLeaveReview}},
		{"review photographer", "review_photographer_ivan", Action{Kind: ActionReviewPhotographer, PhotographerID: "ivan"}},
		{"review rating", "review_rating_4", Action{Kind: ActionReviewRating, Rating: 4}},
		{"review rating garbage", "review_rating_five", Action{}},
		{"gallery menu", "gallery", Action{Kind: ActionShowGallery}},
		{"gallery page", "gallery_anna_2", Action{Kind: ActionGalleryPage, PhotographerID: "anna", Page: 2}},
		{"gallery underscore id", "gallery_studio_one_0", Action{Kind: ActionGalleryPage, PhotographerID: "studio_one", Page: 0}},
		{"gallery malformed", "gallery_anna", Action{}},
		{"admin confirm", "admin_confirm_15", Action{Kind: ActionAdminConfirm, AppointmentID: 15}},
		{"admin cancel", "admin_cancel_7", Action{Kind: ActionAdminCancel, AppointmentID: 7}},
		{"admin confirm garbage", "admin_confirm_abc", Action{}},
		{"unknown", "definitely_not_a_button", Action{}},
		{"empty", "", Action{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCallback(tt.data))
		})
	}
}
