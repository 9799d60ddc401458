package models

// RoomSummary is an agenda entry joined with the room's facilities.
type RoomSummary struct {
	RoomName        string      `json:"room_name"`
	TimeSlot        string      `json:"time_slot"`
	FacilitiesScore float64     `json:"facilities_score"`
	Facilities      *Facilities `json:"facilities,omitempty"`
}

// RoomReading is a sensor reading joined with the room's facilities.
type RoomReading struct {
	Reading    SensorReading `json:"reading"`
	Facilities *Facilities   `json:"facilities,omitempty"`
}

// SnapshotInfo describes a loaded data snapshot.
type SnapshotInfo struct {
	ID            string `json:"snapshot_id"`
	LoadedAt      string `json:"loaded_at"`
	AgendaEntries int    `json:"agenda_entries"`
	BusyIntervals int    `json:"busy_intervals"`
	Facilities    int    `json:"facilities"`
	Readings      int    `json:"readings"`
}
