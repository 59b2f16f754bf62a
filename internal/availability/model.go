package availability

import (
	"time"

	"github.com/medvoice-ai/hospital-scheduler/internal/schedule"
)

// Doctor holds one doctor's slot state inside a specialty document. Slots are
// stored in the canonical text form; available and booked never intersect,
// which the commit path enforces with a conditional write.
type Doctor struct {
	Name           string   `dynamodbav:"name" json:"name"`
	AvailableSlots []string `dynamodbav:"available_slots" json:"available_slots"`
	BookedSlots    []string `dynamodbav:"booked_slots" json:"booked_slots"`
}

// BookedAt decodes the doctor's booked slots against a reference time.
// Entries that no longer parse are skipped rather than failing the caller.
func (d *Doctor) BookedAt(ref time.Time) []schedule.Slot {
	slots := make([]schedule.Slot, 0, len(d.BookedSlots))
	for _, text := range d.BookedSlots {
		slot, err := schedule.Parse(text, ref)
		if err != nil {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

// Specialty is a medical department grouping doctors. One document per
// specialty; position preserves seed insertion order for presentation.
type Specialty struct {
	Name     string   `dynamodbav:"name" json:"name"`
	Position int      `dynamodbav:"position" json:"-"`
	Doctors  []Doctor `dynamodbav:"doctors" json:"doctors"`
}

// Doctor returns the named doctor within the specialty, or nil.
func (s *Specialty) Doctor(name string) *Doctor {
	for i := range s.Doctors {
		if s.Doctors[i].Name == name {
			return &s.Doctors[i]
		}
	}
	return nil
}
