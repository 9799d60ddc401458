package recommender

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrec-server/models"
)

func at(clock string) time.Time {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		panic(err)
	}
	return time.Date(2024, 11, 4, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// fullReading returns a reading that meets every standard.
func fullReading(room, clock string, temp float64) models.SensorReading {
	return models.SensorReading{
		RoomName:    room,
		Timestamp:   at(clock),
		Temperature: models.Known(temp),
		CO2Level:    models.Known(500),
		Humidity:    models.Known(45),
		VOCLevel:    models.Known(100),
		PM10:        models.Known(10),
		PM25:        models.Known(5),
		SoundLevel:  models.Known(30),
	}
}

func facility(room string, projector, seats, computers, robots int) models.Facility {
	return models.Facility{RoomName: room, Facilities: models.Facilities{
		VideoProjector:    projector,
		SeatingCapacity:   seats,
		Computers:         computers,
		RobotsForTraining: robots,
	}}
}

func request(t *testing.T, temp float64, slot string) Request {
	t.Helper()
	ts, err := models.ParseTimeSlot(slot)
	require.NoError(t, err)
	return Request{TimeSlot: ts, Temperature: temp}
}

func quietRecommender() *Recommender {
	return New(log.New(io.Discard))
}

func scenarioSnapshot() *Snapshot {
	return NewSnapshot(
		[]models.AgendaEntry{{RoomName: "RoomA", TimeSlot: "08:00-09:00"}},
		[]models.Facility{facility("RoomA", 1, 30, 0, 0)},
		[]models.SensorReading{fullReading("RoomA", "08:30", 22)},
	)
}

func TestRecommend_SingleRoomScenario(t *testing.T) {
	// Setup
	snap := scenarioSnapshot()

	// Act
	res, err := quietRecommender().Recommend(snap, request(t, 22, "08:00-09:00"), DefaultOptions())

	// Assert
	require.NoError(t, err)
	require.Len(t, res.Rooms, 1)
	assert.Equal(t, ReasonNone, res.Reason)
	assert.Equal(t, snap.ID, res.SnapshotID)

	room := res.Rooms[0]
	assert.Equal(t, "RoomA", room.RoomName)
	assert.Equal(t, 1.0, room.Rank)
	assert.Equal(t, 30, room.Facilities.SeatingCapacity)
	// (1 + 30) * 0.5 + mean(22, 500, 45, 30) * 0.5
	assert.InDelta(t, 90.125, room.Score, 1e-9)
	assert.Equal(t, 1, room.Conditions.Readings)
}

func TestRecommend_NoReadingsInSlot(t *testing.T) {
	res, err := quietRecommender().Recommend(scenarioSnapshot(), request(t, 22, "10:00-11:00"), DefaultOptions())

	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, ReasonTimeSlot, res.Reason)
	assert.Equal(t, DetailNoData, res.Detail)
}

func TestRecommend_EmptySnapshot(t *testing.T) {
	snap := NewSnapshot(nil, nil, nil)

	res, err := quietRecommender().Recommend(snap, request(t, 22, "08:00-09:00"), DefaultOptions())

	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, ReasonNoData, res.Reason)
	assert.Equal(t, DetailNoSensorData, res.Detail)
}

func TestRecommend_NilSnapshot(t *testing.T) {
	_, err := quietRecommender().Recommend(nil, request(t, 22, "08:00-09:00"), DefaultOptions())

	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestRecommend_TemperatureOutsideStandards(t *testing.T) {
	res, err := quietRecommender().Recommend(scenarioSnapshot(), request(t, 50, "08:00-09:00"), DefaultOptions())

	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, ReasonPreferences, res.Reason)
	assert.Equal(t, DetailTemperatureOutOfRange, res.Detail)
	assert.Equal(t, []float64{22}, res.AvailableTemperatures)
}

func TestRecommend_NoMatchingRooms(t *testing.T) {
	res, err := quietRecommender().Recommend(scenarioSnapshot(), request(t, 26, "08:00-09:00"), DefaultOptions())

	require.NoError(t, err)
	assert.Equal(t, ReasonPreferences, res.Reason)
	assert.Equal(t, DetailNoMatchingRooms, res.Detail)
	assert.Equal(t, []float64{22}, res.AvailableTemperatures)
}

func TestRecommend_StandardsNotMet(t *testing.T) {
	r := fullReading("RoomA", "08:30", 22)
	r.CO2Level = models.Known(1500)
	snap := NewSnapshot(nil, nil, []models.SensorReading{r})

	res, err := quietRecommender().Recommend(snap, request(t, 22, "08:00-09:00"), DefaultOptions())

	require.NoError(t, err)
	assert.Equal(t, ReasonPreferences, res.Reason)
	assert.Equal(t, DetailStandardsNotMet, res.Detail)
}

func TestRecommend_AvailabilityCheck(t *testing.T) {
	opts := DefaultOptions()
	opts.CheckAvailability = true

	booked, err := quietRecommender().Recommend(scenarioSnapshot(), request(t, 22, "08:00-09:00"), opts)
	require.NoError(t, err)
	assert.Equal(t, ReasonTimeSlot, booked.Reason)
	assert.Equal(t, DetailRoomsBooked, booked.Detail)

	snap := NewSnapshot(
		[]models.AgendaEntry{{RoomName: "RoomA", TimeSlot: "08:00-09:00"}},
		nil,
		[]models.SensorReading{fullReading("RoomA", "09:15", 22)},
	)
	free, err := quietRecommender().Recommend(snap, request(t, 22, "09:00-10:00"), opts)
	require.NoError(t, err)
	require.Len(t, free.Rooms, 1)
	assert.Equal(t, "RoomA", free.Rooms[0].RoomName)
}

func TestRecommend_MissingColumnPassesThrough(t *testing.T) {
	// Setup: no reading carries co2_level, one would fail it if present
	readings := []models.SensorReading{
		fullReading("RoomA", "08:10", 22),
		fullReading("RoomB", "08:20", 22),
	}
	for i := range readings {
		readings[i].CO2Level = models.Unknown
	}
	snap := NewSnapshot(nil, nil, readings)

	// Act
	res, err := quietRecommender().Recommend(snap, request(t, 22, "08:00-09:00"), DefaultOptions())

	// Assert
	require.NoError(t, err)
	assert.Len(t, res.Rooms, 2)
	assert.Contains(t, res.AbsentMetrics, models.MetricCO2)
}

func TestRecommend_NoiseAndSeatingPreferences(t *testing.T) {
	quiet := fullReading("Quiet", "08:30", 22)
	quiet.SoundLevel = models.Known(25)
	loud := fullReading("Loud", "08:30", 22)
	loud.SoundLevel = models.Known(40)
	small := fullReading("Small", "08:30", 22)
	small.SoundLevel = models.Known(20)

	snap := NewSnapshot(nil,
		[]models.Facility{
			facility("Quiet", 0, 40, 0, 0),
			facility("Loud", 0, 40, 0, 0),
			facility("Small", 0, 10, 0, 0),
		},
		[]models.SensorReading{quiet, loud, small},
	)

	noise := 30.0
	seats := 20
	req := request(t, 22, "08:00-09:00")
	req.NoiseCeiling = &noise
	req.MinSeatingCapacity = &seats

	res, err := quietRecommender().Recommend(snap, req, DefaultOptions())

	require.NoError(t, err)
	require.Len(t, res.Rooms, 1)
	assert.Equal(t, "Quiet", res.Rooms[0].RoomName)
}

func TestRecommend_ToleranceIsConfigurable(t *testing.T) {
	snap := scenarioSnapshot()
	req := request(t, 24, "08:00-09:00")

	narrow, err := quietRecommender().Recommend(snap, req, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, narrow.Empty())

	opts := DefaultOptions()
	opts.TemperatureTolerance = 2
	wide, err := quietRecommender().Recommend(snap, req, opts)
	require.NoError(t, err)
	assert.Len(t, wide.Rooms, 1)
}

func TestRecommend_Deterministic(t *testing.T) {
	snap := NewSnapshot(nil,
		[]models.Facility{
			facility("C", 1, 20, 0, 0),
			facility("A", 1, 20, 0, 0),
			facility("B", 0, 50, 5, 0),
		},
		[]models.SensorReading{
			fullReading("C", "08:30", 22),
			fullReading("A", "08:30", 22),
			fullReading("B", "08:40", 22),
		},
	)
	req := request(t, 22, "08:00-09:00")

	first, err := quietRecommender().Recommend(snap, req, DefaultOptions())
	require.NoError(t, err)
	second, err := quietRecommender().Recommend(snap, req, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first.Rooms, second.Rooms)
	require.Len(t, first.Rooms, 3)
	assert.Equal(t, "B", first.Rooms[0].RoomName)
	// A and C tie; A is seen first in the snapshot.
	assert.Equal(t, "A", first.Rooms[1].RoomName)
	assert.Equal(t, "C", first.Rooms[2].RoomName)
	assert.Equal(t, []float64{1, 2, 3}, []float64{first.Rooms[0].Rank, first.Rooms[1].Rank, first.Rooms[2].Rank})
}

func TestDetailMessage(t *testing.T) {
	assert.Equal(t, "No rooms match your preferences.", DetailNoMatchingRooms.Message())
	assert.Equal(t, "No rooms match the preferences.", Detail("other").Message())
}
