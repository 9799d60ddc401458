package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomrec-server/models"
)

func TestStandards_CO2Threshold(t *testing.T) {
	st := DefaultStandards()

	over := fullReading("A", "08:00", 22)
	over.CO2Level = models.Known(1001)
	limit := fullReading("A", "08:00", 22)
	limit.CO2Level = models.Known(1000)
	missing := fullReading("A", "08:00", 22)
	missing.CO2Level = models.Unknown

	assert.False(t, st.Satisfies(over))
	assert.True(t, st.Satisfies(limit))
	assert.True(t, st.Satisfies(missing))
}

func TestFilterStandards(t *testing.T) {
	tooCold := fullReading("Cold", "08:00", 18.5)
	dusty := fullReading("Dusty", "08:00", 22)
	dusty.PM25 = models.Known(30)
	humid := fullReading("Humid", "08:00", 22)
	humid.Humidity = models.Known(70)

	rows := []CandidateRow{
		{Reading: fullReading("Ok", "08:00", 22)},
		{Reading: tooCold},
		{Reading: dusty},
		{Reading: humid},
	}

	kept := FilterStandards(rows, DefaultStandards())

	names := make([]string, 0, len(kept))
	for _, r := range kept {
		names = append(names, r.Reading.RoomName)
	}
	assert.Equal(t, []string{"Ok", "Humid"}, names)
}

func TestAbsentMetrics(t *testing.T) {
	a := fullReading("A", "08:00", 22)
	a.VOCLevel = models.Unknown
	a.PM10 = models.Unknown
	b := fullReading("B", "08:00", 22)
	b.VOCLevel = models.Unknown

	absent := AbsentMetrics([]CandidateRow{{Reading: a}, {Reading: b}})

	assert.Equal(t, []models.MetricName{models.MetricVOC}, absent)
}

func TestAggregate_MedianAndFirstFacility(t *testing.T) {
	// Setup
	temps := []float64{24, 20, 23, 21}
	var rows []CandidateRow
	for i, temp := range temps {
		r := fullReading("A", "08:00", temp)
		rows = append(rows, CandidateRow{
			Reading:       r,
			Facilities:    models.Facilities{SeatingCapacity: 10 + i},
			HasFacilities: true,
		})
	}
	other := fullReading("B", "08:00", 25)
	other.SoundLevel = models.Unknown
	rows = append([]CandidateRow{{Reading: other}}, rows...)

	// Act
	aggs := Aggregate(rows)

	// Assert
	require.Len(t, aggs, 2)
	assert.Equal(t, "B", aggs[0].RoomName)
	assert.False(t, aggs[0].Conditions.SoundLevel.IsKnown())

	a := aggs[1]
	assert.Equal(t, "A", a.RoomName)
	assert.Equal(t, 10, a.Facilities.SeatingCapacity)
	temp, ok := a.Conditions.Temperature.Get()
	require.True(t, ok)
	assert.Equal(t, 22.0, temp)
	assert.Equal(t, 4, a.Conditions.Readings)
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		vals []float64
		want float64
	}{
		{"single", []float64{3}, 3},
		{"odd", []float64{5, 1, 3}, 3},
		{"even", []float64{4, 1, 3, 2}, 2.5},
		{"outlier", []float64{21, 22, 23, 400}, 22.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, median(tt.vals))
		})
	}
}

func TestComfortScore(t *testing.T) {
	c := models.RoomConditions{
		Temperature: models.Known(20),
		CO2Level:    models.Known(400),
		Humidity:    models.Known(40),
		SoundLevel:  models.Unknown,
	}
	assert.InDelta(t, 460.0/3, ComfortScore(c), 1e-9)
	assert.Equal(t, 0.0, ComfortScore(models.RoomConditions{}))
}

func TestRank_OrderTiesAndTopN(t *testing.T) {
	aggs := []RoomAggregate{
		{RoomName: "First", Facilities: models.Facilities{SeatingCapacity: 10}},
		{RoomName: "Big", Facilities: models.Facilities{SeatingCapacity: 40}},
		{RoomName: "Second", Facilities: models.Facilities{SeatingCapacity: 10}},
		{RoomName: "Tiny", Facilities: models.Facilities{SeatingCapacity: 2}},
	}
	opts := DefaultOptions()
	opts.TopN = 3

	ranked := Rank(aggs, opts)

	require.Len(t, ranked, 3)
	assert.Equal(t, "Big", ranked[0].RoomName)
	assert.Equal(t, "First", ranked[1].RoomName)
	assert.Equal(t, "Second", ranked[2].RoomName)
	for i, r := range ranked {
		assert.Equal(t, float64(i+1), r.Rank)
	}
	assert.Equal(t, ranked, Rank(aggs, opts))
}

func TestScore_TemperatureAndNoiseWeights(t *testing.T) {
	a := RoomAggregate{Conditions: models.RoomConditions{
		Temperature: models.Known(20),
		SoundLevel:  models.Known(30),
	}}
	opts := DefaultOptions()
	opts.Weights = Weights{Temperature: 2, Noise: -1}

	assert.InDelta(t, 10.0, Score(a, opts), 1e-9)
}

func TestFacilitiesScore_Subset(t *testing.T) {
	f := models.Facilities{VideoProjector: 1, SeatingCapacity: 30, Computers: 4, RobotsForTraining: 2}

	assert.Equal(t, 37.0, FacilitiesScore(f, DefaultOptions().FacilityWeights))
	assert.Equal(t, 3.0, FacilitiesScore(f, FacilityWeights{VideoProjector: 1, RobotsForTraining: 1}))
}

func TestSnapshot_Views(t *testing.T) {
	snap := NewSnapshot(
		[]models.AgendaEntry{
			{RoomName: "B", TimeSlot: "09:00-10:00"},
			{RoomName: "B", TimeSlot: "10:00-11:00"},
			{RoomName: "A", TimeSlot: "bad"},
		},
		[]models.Facility{facility("B", 1, 10, 0, 0), facility("A", 0, 5, 0, 0)},
		[]models.SensorReading{
			fullReading("B", "09:30", 22),
			fullReading("A", "10:00", 21),
			fullReading("B", "08:30", 23),
		},
	)

	assert.NotEmpty(t, snap.ID)
	assert.Len(t, snap.InvalidAgenda(), 1)
	assert.Len(t, snap.BusyIntervals("B"), 1)
	assert.Equal(t, []string{"A", "B"}, []string{snap.Facilities()[0].RoomName, snap.Facilities()[1].RoomName})

	b := snap.ReadingsForRoom("B")
	require.Len(t, b, 2)
	assert.True(t, b[0].Timestamp.Before(b[1].Timestamp))
	assert.Empty(t, snap.ReadingsForRoom("Z"))

	info := snap.Info()
	assert.Equal(t, 3, info.AgendaEntries)
	assert.Equal(t, 1, info.BusyIntervals)
	assert.Equal(t, 2, info.Facilities)
	assert.Equal(t, 3, info.Readings)
}
