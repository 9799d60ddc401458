// Package recommender ranks rooms for a time slot from a snapshot of agenda, facilities and
// sensor readings: availability, regulatory standards and user preferences are applied in
// turn, surviving readings are summarised per room and the rooms are scored.
package recommender

import (
	"errors"

	"github.com/charmbracelet/log"

	"roomrec-server/models"
)

// ErrNoSnapshot is returned when no data snapshot has been loaded yet.
var ErrNoSnapshot = errors.New("no room data snapshot loaded")

// Reason tags an empty result with the stage that emptied it.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonNoData      Reason = "no_data"
	ReasonTimeSlot    Reason = "time_slot"
	ReasonPreferences Reason = "preferences"
)

// Detail refines a Reason for user-facing messages.
type Detail string

const (
	DetailNoSensorData          Detail = "no_sensor_data"
	DetailNoData                Detail = "no_data"
	DetailRoomsBooked           Detail = "rooms_booked"
	DetailStandardsNotMet       Detail = "standards_not_met"
	DetailTemperatureOutOfRange Detail = "temperature_out_of_range"
	DetailNoMatchingRooms       Detail = "no_matching_rooms"
)

var detailMessages = map[Detail]string{
	DetailNoSensorData:          "No sensor data is available.",
	DetailNoData:                "No sensor data is available for the time slot.",
	DetailRoomsBooked:           "No rooms are available for the selected time slot.",
	DetailStandardsNotMet:       "No rooms meet the regulations for the time slot.",
	DetailTemperatureOutOfRange: "The preferred temperature is outside the acceptable range.",
	DetailNoMatchingRooms:       "No rooms match your preferences.",
}

// Message returns the user-facing sentence for d.
func (d Detail) Message() string {
	if m, ok := detailMessages[d]; ok {
		return m
	}
	return "No rooms match the preferences."
}

// Result is the outcome of one recommendation. Rooms is empty exactly when Reason is set.
type Result struct {
	Rooms                 []models.RankedRoom
	Reason                Reason
	Detail                Detail
	AvailableTemperatures []float64
	AbsentMetrics         []models.MetricName
	SnapshotID            string
}

// Empty reports whether no room qualified.
func (r Result) Empty() bool {
	return len(r.Rooms) == 0
}

// Recommender runs the filter and ranking pipeline. It holds no state between calls.
type Recommender struct {
	logger *log.Logger
}

// New returns a Recommender logging through logger, or the default logger when nil.
func New(logger *log.Logger) *Recommender {
	if logger == nil {
		logger = log.Default()
	}
	return &Recommender{logger: logger.WithPrefix("Recommender")}
}

// Recommend runs availability, standards and preference filtering, aggregation and ranking
// for req against snap. The first stage that leaves nothing ends the run with a tagged
// empty Result. An error is only returned when snap is nil.
func (rc *Recommender) Recommend(snap *Snapshot, req Request, opts Options) (Result, error) {
	if snap == nil {
		return Result{}, ErrNoSnapshot
	}
	res := Result{SnapshotID: snap.ID}

	if len(snap.Readings()) == 0 {
		rc.logger.Warn("snapshot holds no sensor readings", "snapshot_id", snap.ID)
		res.Reason, res.Detail = ReasonNoData, DetailNoSensorData
		return res, nil
	}

	rows := rc.rowsInSlot(snap, req.TimeSlot)
	if len(rows) == 0 {
		rc.logger.Info("no sensor data for time slot", "time_slot", req.TimeSlot.String())
		res.Reason, res.Detail = ReasonTimeSlot, DetailNoData
		return res, nil
	}

	if opts.CheckAvailability {
		rows = filterAvailable(snap, rows, req.TimeSlot)
		if len(rows) == 0 {
			rc.logger.Info("every room is booked for time slot", "time_slot", req.TimeSlot.String())
			res.Reason, res.Detail = ReasonTimeSlot, DetailRoomsBooked
			return res, nil
		}
	}

	res.AbsentMetrics = AbsentMetrics(rows)
	for _, m := range res.AbsentMetrics {
		rc.logger.Warn("metric missing from sensor data, skipping its filter", "metric", string(m))
	}

	compliant := FilterStandards(rows, opts.Standards)
	if len(compliant) == 0 {
		rc.logger.Info("no rooms meet the regulations", "time_slot", req.TimeSlot.String())
		res.Reason, res.Detail = ReasonPreferences, DetailStandardsNotMet
		return res, nil
	}

	matching := FilterPreferences(compliant, preferencesFor(req, opts))
	if len(matching) == 0 {
		res.Reason = ReasonPreferences
		res.Detail = DetailNoMatchingRooms
		if !opts.Standards.TemperatureInRange(req.Temperature) {
			res.Detail = DetailTemperatureOutOfRange
		}
		res.AvailableTemperatures = availableTemperatures(compliant)
		rc.logger.Info("no rooms match preferences",
			"time_slot", req.TimeSlot.String(), "temperature", req.Temperature, "detail", string(res.Detail))
		return res, nil
	}

	res.Rooms = Rank(Aggregate(matching), opts)
	return res, nil
}

// rowsInSlot joins the readings whose time of day falls in slot with their room facilities.
func (rc *Recommender) rowsInSlot(snap *Snapshot, slot models.TimeSlot) []CandidateRow {
	var rows []CandidateRow
	for _, r := range snap.Readings() {
		if !slot.CoversClock(r.Timestamp) {
			continue
		}
		f, ok := snap.Facility(r.RoomName)
		rows = append(rows, CandidateRow{Reading: r, Facilities: f.Facilities, HasFacilities: ok})
	}
	return rows
}

func filterAvailable(snap *Snapshot, rows []CandidateRow, slot models.TimeSlot) []CandidateRow {
	out := make([]CandidateRow, 0, len(rows))
	for _, row := range rows {
		if snap.IsAvailable(row.Reading.RoomName, slot) {
			out = append(out, row)
		}
	}
	return out
}
