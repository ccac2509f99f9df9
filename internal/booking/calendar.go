package booking

import (
	"time"

	"github.com/cservice/cservice-backend/internal/models"
)

// Calendar defines the universe of bookable slots: business hours and slot
// granularity. It is pure computation, no I/O.
type Calendar struct {
	StartHour    int
	EndHour      int
	SlotDuration time.Duration
}

// NewCalendar builds a calendar, falling back to 09:00-17:00 with 1-hour
// slots when a value is missing or nonsensical.
func NewCalendar(startHour, endHour int, slotDuration time.Duration) Calendar {
	if startHour < 0 || startHour > 23 || endHour > 24 || endHour <= startHour {
		startHour, endHour = 9, 17
	}
	if slotDuration <= 0 {
		slotDuration = time.Hour
	}
	return Calendar{StartHour: startHour, EndHour: endHour, SlotDuration: slotDuration}
}

// PossibleSlots returns every slot start for the calendar day of date, in
// ascending order. The slots carry date's location.
func (c Calendar) PossibleSlots(date time.Time) []time.Time {
	// Pin the business-hour boundaries to wall-clock time so a DST
	// transition earlier in the day cannot shift them.
	open := time.Date(date.Year(), date.Month(), date.Day(), c.StartHour, 0, 0, 0, date.Location())
	close := time.Date(date.Year(), date.Month(), date.Day(), c.EndHour, 0, 0, 0, date.Location())

	var slots []time.Time
	for t := open; t.Before(close); t = t.Add(c.SlotDuration) {
		slots = append(slots, t)
	}
	return slots
}

// AvailableSlots returns the possible slots for the day that are not taken
// by an active booking. Cancelled and completed bookings do not occupy
// their slot. Ordering is preserved.
func (c Calendar) AvailableSlots(date time.Time, bookings []models.Booking) []time.Time {
	occupied := make(map[int64]struct{}, len(bookings))
	for _, b := range bookings {
		if b.Status.IsActive() {
			occupied[b.ScheduledFor.UnixNano()] = struct{}{}
		}
	}

	var free []time.Time
	for _, slot := range c.PossibleSlots(date) {
		if _, taken := occupied[slot.UnixNano()]; !taken {
			free = append(free, slot)
		}
	}
	return free
}
