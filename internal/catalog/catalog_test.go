package catalog

import "testing"

func TestSlots(t *testing.T) {
	got := Slots()
	if len(got) != 3 {
		t.Fatalf("len(Slots()) = %d, want 3", len(got))
	}
	want := []Slot{
		{ID: "10:00", Label: "10:00-12:00"},
		{ID: "14:00", Label: "14:00-16:00"},
		{ID: "18:00", Label: "18:00-20:00"},
	}
	for i, s := range got {
		if s != want[i] {
			t.Errorf("Slots()[%d] = %+v, want %+v", i, s, want[i])
		}
	}

	// Mutating the returned slice must not leak into the package data.
	got[0].Label = "mutated"
	if SlotLabel("10:00") != "10:00-12:00" {
		t.Error("Slots() leaks internal state")
	}
}

func TestSlotLookup(t *testing.T) {
	tests := []struct {
		id        string
		wantLabel string
		wantOK    bool
	}{
		{"10:00", "10:00-12:00", true},
		{"14:00", "14:00-16:00", true},
		{"18:00", "18:00-20:00", true},
		{"12:00", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		s, ok := SlotByID(tt.id)
		if ok != tt.wantOK {
			t.Errorf("SlotByID(%q) ok = %v, want %v", tt.id, ok, tt.wantOK)
		}
		if ok && s.Label != tt.wantLabel {
			t.Errorf("SlotByID(%q).Label = %q, want %q", tt.id, s.Label, tt.wantLabel)
		}
	}

	// Unknown ids fall back to the id so legacy records still render.
	if got := SlotLabel("09:00"); got != "09:00" {
		t.Errorf("SlotLabel(unknown) = %q, want passthrough", got)
	}
}

func TestCatalogLookup(t *testing.T) {
	c := New([]Photographer{
		{ID: "anna", Name: "Анна Петрова", Price: 5000},
		{ID: "ivan", Name: "Иван Смирнов", Price: 7000},
	})

	list := c.Photographers()
	if len(list) != 2 || list[0].ID != "anna" || list[1].ID != "ivan" {
		t.Fatalf("Photographers() order wrong: %+v", list)
	}

	p, ok := c.Photographer("ivan")
	if !ok || p.Price != 7000 {
		t.Errorf("Photographer(ivan) = %+v, %v", p, ok)
	}
	if _, ok := c.Photographer("ghost"); ok {
		t.Error("unknown id must miss")
	}

	if got := c.Name("anna"); got != "Анна Петрова" {
		t.Errorf("Name(anna) = %q", got)
	}
	if got := c.Name("ghost"); got != "Unknown" {
		t.Errorf("Name(ghost) = %q, want Unknown", got)
	}
}
