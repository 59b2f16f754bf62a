package schedule

import "time"

// Layout is the canonical text form for a slot: zero-padded day of month,
// full month name, 12-hour clock with AM/PM. The year is intentionally absent;
// it matches the legacy storage format, so a full timestamp is kept internally
// and the text form is used only for storage and display.
const Layout = "02 January at 03 PM"

// ConflictWindow is the minimum separation between two booked slots for the
// same doctor. Slots closer than this conflict.
const ConflictWindow = time.Hour

// Slot is an hour-granularity bookable appointment time.
type Slot struct {
	t time.Time
}

// At builds a Slot from a timestamp, discarding minutes and smaller units.
// Truncation is on the wall clock, not the epoch, so half-hour timezones
// keep a whole-hour local time.
func At(t time.Time) Slot {
	return Slot{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())}
}

// Time returns the slot's instant at hour precision.
func (s Slot) Time() time.Time {
	return s.t
}

// String renders the canonical "day month at hour AM/PM" form.
func (s Slot) String() string {
	return s.t.Format(Layout)
}

// Equal reports whether two slots name the same instant.
func (s Slot) Equal(o Slot) bool {
	return s.t.Equal(o.t)
}

// ConflictsWith reports whether two slots are closer together than the
// conflict window, in either direction.
func (s Slot) ConflictsWith(o Slot) bool {
	d := s.t.Sub(o.t)
	if d < 0 {
		d = -d
	}
	return d < ConflictWindow
}
