package recommender

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"roomrec-server/models"
)

// Snapshot is an immutable view of agenda, facilities and sensor readings together with the
// busy intervals derived from the agenda. It is built once per data refresh and shared
// read-only by every request until the next one replaces it.
type Snapshot struct {
	ID       string
	LoadedAt time.Time

	agenda        []models.AgendaEntry
	invalidAgenda []models.AgendaEntry
	busy          map[string][]models.BusyInterval
	busyCount     int
	facilities    map[string]models.Facility
	facilityOrder []string
	readings      []models.SensorReading
}

// NewSnapshot copies the datasets, coalesces the agenda and orders readings by room and
// timestamp. Any of the inputs may be empty.
func NewSnapshot(agenda []models.AgendaEntry, facilities []models.Facility, readings []models.SensorReading) *Snapshot {
	s := &Snapshot{
		ID:         uuid.NewString(),
		LoadedAt:   time.Now(),
		agenda:     append([]models.AgendaEntry(nil), agenda...),
		facilities: make(map[string]models.Facility, len(facilities)),
		readings:   append([]models.SensorReading(nil), readings...),
	}

	s.busy, s.invalidAgenda = Coalesce(s.agenda)
	for _, b := range s.busy {
		s.busyCount += len(b)
	}

	for _, f := range facilities {
		if _, seen := s.facilities[f.RoomName]; !seen {
			s.facilityOrder = append(s.facilityOrder, f.RoomName)
		}
		s.facilities[f.RoomName] = f
	}
	sort.Strings(s.facilityOrder)

	sort.SliceStable(s.readings, func(i, j int) bool {
		if s.readings[i].RoomName != s.readings[j].RoomName {
			return s.readings[i].RoomName < s.readings[j].RoomName
		}
		return s.readings[i].Timestamp.Before(s.readings[j].Timestamp)
	})
	return s
}

// Agenda returns the agenda entries in load order.
func (s *Snapshot) Agenda() []models.AgendaEntry {
	return s.agenda
}

// InvalidAgenda returns agenda entries whose time slot could not be parsed.
func (s *Snapshot) InvalidAgenda() []models.AgendaEntry {
	return s.invalidAgenda
}

// BusyIntervals returns the coalesced intervals of one room, ordered by start.
func (s *Snapshot) BusyIntervals(room string) []models.BusyInterval {
	return s.busy[room]
}

// IsAvailable applies the availability rule to one room of the snapshot.
func (s *Snapshot) IsAvailable(room string, slot models.TimeSlot) bool {
	return IsAvailable(s.busy[room], slot)
}

// Facility returns the facility record of a room.
func (s *Snapshot) Facility(room string) (models.Facility, bool) {
	f, ok := s.facilities[room]
	return f, ok
}

// Facilities returns every facility record ordered by room name.
func (s *Snapshot) Facilities() []models.Facility {
	out := make([]models.Facility, 0, len(s.facilityOrder))
	for _, name := range s.facilityOrder {
		out = append(out, s.facilities[name])
	}
	return out
}

// Readings returns all sensor readings ordered by room and timestamp.
func (s *Snapshot) Readings() []models.SensorReading {
	return s.readings
}

// ReadingsForRoom returns one room's readings in timestamp order.
func (s *Snapshot) ReadingsForRoom(room string) []models.SensorReading {
	lo := sort.Search(len(s.readings), func(i int) bool { return s.readings[i].RoomName >= room })
	hi := lo
	for hi < len(s.readings) && s.readings[hi].RoomName == room {
		hi++
	}
	return s.readings[lo:hi]
}

// Info summarises the snapshot.
func (s *Snapshot) Info() models.SnapshotInfo {
	return models.SnapshotInfo{
		ID:            s.ID,
		LoadedAt:      s.LoadedAt.Format(time.RFC3339),
		AgendaEntries: len(s.agenda),
		BusyIntervals: s.busyCount,
		Facilities:    len(s.facilities),
		Readings:      len(s.readings),
	}
}
