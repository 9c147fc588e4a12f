// Package catalog holds static reference data for the booking flow:
// photographers with their portfolios and the fixed time slots. The
// booking flow only reads it; content is owned by configuration.
package catalog

// Photographer is a bookable photographer profile.
type Photographer struct {
	ID     string
	Name   string
	Price  int      // session price, RUB
	Styles []string // shoot styles offered, shown in the price list
}

// Slot is a fixed time-of-day booking window.
type Slot struct {
	ID    string // start time, e.g. "14:00"
	Label string // display window, e.g. "14:00-16:00"
}

var slots = []Slot{
	{ID: "10:00", Label: "10:00-12:00"},
	{ID: "14:00", Label: "14:00-16:00"},
	{ID: "18:00", Label: "18:00-20:00"},
}

// Slots returns all bookable time slots in display order.
func Slots() []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}

// SlotByID looks up a slot by its id.
func SlotByID(id string) (Slot, bool) {
	for _, s := range slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// SlotLabel returns the display window for a slot id, falling back to the
// id itself for unknown values (old records keep rendering).
func SlotLabel(id string) string {
	if s, ok := SlotByID(id); ok {
		return s.Label
	}
	return id
}

// Catalog provides lookup over the configured photographers.
type Catalog struct {
	list  []Photographer
	index map[string]Photographer
}

// New builds a catalog preserving the configured order.
func New(photographers []Photographer) *Catalog {
	c := &Catalog{
		list:  make([]Photographer, len(photographers)),
		index: make(map[string]Photographer, len(photographers)),
	}
	copy(c.list, photographers)
	for _, p := range photographers {
		c.index[p.ID] = p
	}
	return c
}

// Photographers returns all entries in display order.
func (c *Catalog) Photographers() []Photographer {
	out := make([]Photographer, len(c.list))
	copy(out, c.list)
	return out
}

// Photographer looks up an entry by id.
func (c *Catalog) Photographer(id string) (Photographer, bool) {
	p, ok := c.index[id]
	return p, ok
}

// Name returns the display name for a photographer id, or "Unknown" for
// ids that are no longer configured.
func (c *Catalog) Name(id string) string {
	if p, ok := c.index[id]; ok {
		return p.Name
	}
	return "Unknown"
}
