package recommender

import "roomrec-server/models"

// IsAvailable reports whether a room with the given busy intervals can take a request for
// slot. Only the requested start is checked: it must not fall inside any [start, final_end).
// A request starting exactly when a booking ends is available.
func IsAvailable(busy []models.BusyInterval, slot models.TimeSlot) bool {
	for _, b := range busy {
		if b.Contains(slot.Start) {
			return false
		}
	}
	return true
}
