package scheduling

import (
	"time"

	"slotify/models"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant. Intervals that merely touch at an
// endpoint (a.end == b.start) do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HasConflict reports whether the candidate range [start, end) overlaps any
// slot in booked. Callers pass the committed slots only (see FilterBooked).
// A zero-length candidate never conflicts.
func HasConflict(start, end time.Time, booked []models.Slot) bool {
	if !start.Before(end) {
		return false
	}
	for _, s := range booked {
		if Overlaps(start, end, s.StartTime, s.EndTime) {
			return true
		}
	}
	return false
}

// FilterBooked returns the subset of slots with booked=true, preserving order.
func FilterBooked(slots []models.Slot) []models.Slot {
	var booked []models.Slot
	for _, s := range slots {
		if s.Booked {
			booked = append(booked, s)
		}
	}
	return booked
}
