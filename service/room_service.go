package services

import (
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"roomrec-server/metrics"
	"roomrec-server/models"
	"roomrec-server/recommender"
)

// ErrNoRoomData is returned by the listing operations when the snapshot holds nothing to list.
var ErrNoRoomData = errors.New("no room data available")

// ErrNoSensorData is returned when facilities exist but no sensor readings do.
var ErrNoSensorData = errors.New("no sensor data available")

// listingFacilityWeights score rooms in listings by projector and seats only.
var listingFacilityWeights = recommender.FacilityWeights{VideoProjector: 1, SeatingCapacity: 1}

// RoomService answers room queries against the current snapshot.
type RoomService struct {
	snapshots   SnapshotSource
	recommender *recommender.Recommender
	defaults    recommender.Options
	cache       *RecommendationCache
	metrics     *metrics.Metrics
	logger      *log.Logger
}

// NewRoomService constructs a RoomService. cache and m may be nil.
func NewRoomService(
	snapshots SnapshotSource,
	rec *recommender.Recommender,
	defaults recommender.Options,
	cache *RecommendationCache,
	m *metrics.Metrics,
	logger *log.Logger,
) *RoomService {
	if logger == nil {
		logger = log.Default()
	}
	return &RoomService{
		snapshots:   snapshots,
		recommender: rec,
		defaults:    defaults,
		cache:       cache,
		metrics:     m,
		logger:      logger.WithPrefix("RoomService"),
	}
}

// Recommend validates the request, resolves its options over the defaults and runs the
// pipeline on the current snapshot. Validation failures wrap models.ErrInvalidTimeSlot or
// models.ErrInvalidTemperature; an empty result is not an error.
func (rs *RoomService) Recommend(wire models.RecommendationRequest) (recommender.Result, error) {
	slot, err := wire.Validate()
	if err != nil {
		return recommender.Result{}, err
	}
	snap := rs.snapshots.Current()
	if snap == nil {
		return recommender.Result{}, recommender.ErrNoSnapshot
	}

	req := recommender.Request{
		TimeSlot:           slot,
		Temperature:        *wire.Temperature,
		NoiseCeiling:       wire.NoiseLevel,
		MinSeatingCapacity: wire.MinSeatingCapacity,
	}
	opts := rs.optionsFor(wire)

	key := CacheKey(snap.ID, req, opts)
	if rs.cache != nil {
		if res, ok := rs.cache.Get(key); ok {
			rs.logger.Debug("recommendation served from cache", "time_slot", slot.String())
			return res, nil
		}
	}

	start := time.Now()
	res, err := rs.recommender.Recommend(snap, req, opts)
	if err != nil {
		return recommender.Result{}, err
	}
	outcome := "ok"
	if res.Empty() {
		outcome = string(res.Reason)
	}
	rs.metrics.Recommendation(outcome, time.Since(start))

	if rs.cache != nil {
		rs.cache.Set(key, res)
	}
	return res, nil
}

// optionsFor applies the per-request overrides of wire to the configured defaults.
func (rs *RoomService) optionsFor(wire models.RecommendationRequest) recommender.Options {
	opts := rs.defaults
	if wire.Tolerance != nil {
		opts.TemperatureTolerance = *wire.Tolerance
	}
	if wire.TopN != nil {
		opts.TopN = *wire.TopN
	}
	if wire.CheckAvailability != nil {
		opts.CheckAvailability = *wire.CheckAvailability
	}
	if w := wire.Weights; w != nil {
		if w.Facilities != nil {
			opts.Weights.Facilities = *w.Facilities
		}
		if w.Comfort != nil {
			opts.Weights.Comfort = *w.Comfort
		}
		if w.Temperature != nil {
			opts.Weights.Temperature = *w.Temperature
		}
		if w.Noise != nil {
			opts.Weights.Noise = *w.Noise
		}
	}
	return opts
}

// ListRooms joins every agenda entry with its room's facilities.
func (rs *RoomService) ListRooms() ([]models.RoomSummary, error) {
	snap := rs.snapshots.Current()
	if snap == nil {
		return nil, recommender.ErrNoSnapshot
	}
	agenda := snap.Agenda()
	if len(agenda) == 0 {
		return nil, ErrNoRoomData
	}

	rooms := make([]models.RoomSummary, 0, len(agenda))
	for _, e := range agenda {
		summary := models.RoomSummary{RoomName: e.RoomName, TimeSlot: e.TimeSlot}
		if f, ok := snap.Facility(e.RoomName); ok {
			facilities := f.Facilities
			summary.Facilities = &facilities
			summary.FacilitiesScore = recommender.FacilitiesScore(facilities, listingFacilityWeights)
		}
		rooms = append(rooms, summary)
	}
	return rooms, nil
}

// RoomsWithMetrics joins every sensor reading with its room's facilities.
func (rs *RoomService) RoomsWithMetrics() ([]models.RoomReading, error) {
	snap := rs.snapshots.Current()
	if snap == nil {
		return nil, recommender.ErrNoSnapshot
	}
	if len(snap.Facilities()) == 0 {
		return nil, ErrNoRoomData
	}
	readings := snap.Readings()
	if len(readings) == 0 {
		return nil, ErrNoSensorData
	}

	out := make([]models.RoomReading, 0, len(readings))
	for _, r := range readings {
		rr := models.RoomReading{Reading: r}
		if f, ok := snap.Facility(r.RoomName); ok {
			facilities := f.Facilities
			rr.Facilities = &facilities
		}
		out = append(out, rr)
	}
	return out, nil
}

// RoomReadings returns one room's readings in timestamp order.
func (rs *RoomService) RoomReadings(room string) ([]models.SensorReading, error) {
	snap := rs.snapshots.Current()
	if snap == nil {
		return nil, recommender.ErrNoSnapshot
	}
	readings := snap.ReadingsForRoom(room)
	if len(readings) == 0 {
		return nil, ErrNoSensorData
	}
	return readings, nil
}

// CalendarEvents returns the agenda entries whose time slot lies within the time of day
// span from start to end. Dates are ignored; the agenda repeats daily.
func (rs *RoomService) CalendarEvents(start, end time.Time) ([]models.AgendaEntry, error) {
	snap := rs.snapshots.Current()
	if snap == nil {
		return nil, recommender.ErrNoSnapshot
	}
	window := models.TimeSlot{
		Start: start.Hour()*60 + start.Minute(),
		End:   end.Hour()*60 + end.Minute(),
	}

	var events []models.AgendaEntry
	for _, e := range snap.Agenda() {
		slot, err := e.Slot()
		if err != nil {
			continue
		}
		if slot.Within(window) {
			events = append(events, e)
		}
	}
	return events, nil
}

// SnapshotInfo describes the current snapshot.
func (rs *RoomService) SnapshotInfo() (models.SnapshotInfo, error) {
	snap := rs.snapshots.Current()
	if snap == nil {
		return models.SnapshotInfo{}, recommender.ErrNoSnapshot
	}
	return snap.Info(), nil
}
