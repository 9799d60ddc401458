package models

// AgendaEntry is one scheduled booking of a room.
type AgendaEntry struct {
	RoomName string `json:"room_name"`
	TimeSlot string `json:"time_slot"`
}

// Slot parses the entry's time slot.
func (e AgendaEntry) Slot() (TimeSlot, error) {
	return ParseTimeSlot(e.TimeSlot)
}

// BusyInterval is a maximal run of back-to-back bookings of one room, [Start, FinalEnd).
type BusyInterval struct {
	RoomName string `json:"room_name"`
	Start    int    `json:"start_time"`
	FinalEnd int    `json:"final_end_time"`
}

// Slot returns the interval as a TimeSlot.
func (b BusyInterval) Slot() TimeSlot {
	return TimeSlot{Start: b.Start, End: b.FinalEnd}
}

// Contains reports whether minute falls in [Start, FinalEnd).
func (b BusyInterval) Contains(minute int) bool {
	return b.Start <= minute && minute < b.FinalEnd
}

func (b BusyInterval) String() string {
	return b.RoomName + " " + b.Slot().String()
}
