package recommender

import (
	"sort"

	"roomrec-server/models"
)

// Coalesce parses the agenda and merges each room's back-to-back bookings into maximal
// busy intervals. Entries whose time slot does not parse are returned separately and
// take no part in the merge.
func Coalesce(entries []models.AgendaEntry) (map[string][]models.BusyInterval, []models.AgendaEntry) {
	var intervals []models.BusyInterval
	var invalid []models.AgendaEntry
	for _, e := range entries {
		slot, err := e.Slot()
		if err != nil {
			invalid = append(invalid, e)
			continue
		}
		intervals = append(intervals, models.BusyInterval{RoomName: e.RoomName, Start: slot.Start, FinalEnd: slot.End})
	}

	byRoom := make(map[string][]models.BusyInterval)
	for _, b := range CoalesceIntervals(intervals) {
		byRoom[b.RoomName] = append(byRoom[b.RoomName], b)
	}
	return byRoom, invalid
}

// CoalesceIntervals merges intervals of the same room whenever one ends exactly where the
// next starts, transitively. Overlapping bookings are folded into the same interval so the
// result never overlaps. Output is ordered by room, then start. Applying it to its own
// output returns the same set.
func CoalesceIntervals(intervals []models.BusyInterval) []models.BusyInterval {
	sorted := make([]models.BusyInterval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].RoomName != sorted[j].RoomName {
			return sorted[i].RoomName < sorted[j].RoomName
		}
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].FinalEnd < sorted[j].FinalEnd
	})

	out := make([]models.BusyInterval, 0, len(sorted))
	for _, b := range sorted {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.RoomName == b.RoomName && b.Start <= last.FinalEnd {
				if b.FinalEnd > last.FinalEnd {
					last.FinalEnd = b.FinalEnd
				}
				continue
			}
		}
		out = append(out, b)
	}
	return out
}
