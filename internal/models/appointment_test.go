package models

import (
	"testing"
	"time"
)

func TestStatusFinal(t *testing.T) {
	tests := []struct {
		status Status
		final  bool
		valid  bool
	}{
		{StatusNew, false, true},
		{StatusConfirmed, true, true},
		{StatusCancelled, true, true},
		{Status("done"), false, false},
		{Status(""), false, false},
	}

	for _, tt := range tests {
		if got := tt.status.Final(); got != tt.final {
			t.Errorf("Status(%q).Final() = %v, want %v", tt.status, got, tt.final)
		}
		if got := tt.status.Valid(); got != tt.valid {
			t.Errorf("Status(%q).Valid() = %v, want %v", tt.status, got, tt.valid)
		}
	}
}

func TestAppointmentDateText(t *testing.T) {
	a := Appointment{Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)}
	if got := a.DateText(); got != "2025-03-10" {
		t.Errorf("DateText() = %q, want 2025-03-10", got)
	}
}
