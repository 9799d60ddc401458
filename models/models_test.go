package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeSlot(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeSlot
		wantErr bool
	}{
		{input: "08:00-10:00", want: TimeSlot{Start: 480, End: 600}},
		{input: "08:00 - 10:00", want: TimeSlot{Start: 480, End: 600}},
		{input: "00:00-23:59", want: TimeSlot{Start: 0, End: 1439}},
		{input: "10:00-10:00", wantErr: true},
		{input: "11:00-10:00", wantErr: true},
		{input: "8-10", wantErr: true},
		{input: "08:00", wantErr: true},
		{input: "25:00-26:00", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeSlot(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidTimeSlot), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, FormatClock(tt.want.Start)+"-"+FormatClock(tt.want.End), got.String())
		})
	}
}

func TestTimeSlot_CoversClock(t *testing.T) {
	slot := TimeSlot{Start: 8 * 60, End: 9 * 60}
	day := func(h, m, s int) time.Time { return time.Date(2024, 5, 2, h, m, s, 0, time.UTC) }

	assert.True(t, slot.CoversClock(day(8, 0, 0)))
	assert.True(t, slot.CoversClock(day(8, 30, 15)))
	assert.True(t, slot.CoversClock(day(9, 0, 0)))
	assert.False(t, slot.CoversClock(day(9, 0, 1)))
	assert.False(t, slot.CoversClock(day(7, 59, 59)))
}

func TestTimeSlot_Within(t *testing.T) {
	outer := TimeSlot{Start: 480, End: 720}
	assert.True(t, TimeSlot{Start: 480, End: 600}.Within(outer))
	assert.False(t, TimeSlot{Start: 470, End: 600}.Within(outer))
}

func TestBusyInterval_HalfOpen(t *testing.T) {
	b := BusyInterval{RoomName: "A", Start: 540, FinalEnd: 660}
	assert.True(t, b.Contains(540))
	assert.True(t, b.Contains(659))
	assert.False(t, b.Contains(660))
	assert.Equal(t, "A 09:00-11:00", b.String())
}

func TestMetric_JSON(t *testing.T) {
	var doc struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
		C Metric `json:"c"`
		D Metric `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 21.5, "b": "400", "c": null}`), &doc))

	a, ok := doc.A.Get()
	assert.True(t, ok)
	assert.Equal(t, 21.5, a)
	b, _ := doc.B.Get()
	assert.Equal(t, 400.0, b)
	assert.False(t, doc.C.IsKnown())
	assert.False(t, doc.D.IsKnown())

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 21.5, "b": 400, "c": null, "d": null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"a": "warm"}`), &doc))
	for _, v := range []string{`"NaN"`, `"Inf"`, `"-Inf"`, `"+Infinity"`} {
		assert.Error(t, json.Unmarshal([]byte(`{"a": `+v+`}`), &doc), v)
	}
}

func TestMetric_Comparisons(t *testing.T) {
	assert.True(t, Unknown.AtMost(0))
	assert.True(t, Unknown.Between(1, 2))
	assert.True(t, Known(45).AtMost(45))
	assert.False(t, Known(45.1).AtMost(45))
	assert.True(t, Known(19).Between(19, 28))
	assert.False(t, Known(28.5).Between(19, 28))
}

func TestFacility_UnmarshalNested(t *testing.T) {
	data := `{"room_name": "Lab 1", "facilities": {"videoprojector": true, "seating_capacity": 30, "computers": "12", "robots_for_training": false}}`

	var f Facility
	require.NoError(t, json.Unmarshal([]byte(data), &f))

	assert.Equal(t, "Lab 1", f.RoomName)
	assert.Equal(t, Facilities{VideoProjector: 1, SeatingCapacity: 30, Computers: 12, RobotsForTraining: 0}, f.Facilities)
}

func TestFacility_UnmarshalFlat(t *testing.T) {
	data := `{"room_name": "Room 2", "videoprojector": "true", "seating_capacity": 12}`

	var f Facility
	require.NoError(t, json.Unmarshal([]byte(data), &f))

	assert.Equal(t, Facilities{VideoProjector: 1, SeatingCapacity: 12}, f.Facilities)
}

func TestFacility_UnmarshalRejectsGarbage(t *testing.T) {
	var f Facility
	assert.Error(t, json.Unmarshal([]byte(`{"room_name": "X", "facilities": {"computers": "many"}}`), &f))
}

func TestSensorReading_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		ts   string
		want time.Time
	}{
		{"rfc3339", `"2024-11-04T08:30:00Z"`, time.Date(2024, 11, 4, 8, 30, 0, 0, time.UTC)},
		{"naive", `"2024-11-04 08:30:00"`, time.Date(2024, 11, 4, 8, 30, 0, 0, time.UTC)},
		{"minutes", `"2024-11-04T08:30"`, time.Date(2024, 11, 4, 8, 30, 0, 0, time.UTC)},
		{"unix millis", `1730709000000`, time.Date(2024, 11, 4, 8, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := `{"room_name": "A", "timestamp": ` + tt.ts + `, "temperature": 22, "PM2.5": 4}`

			var r SensorReading
			require.NoError(t, json.Unmarshal([]byte(data), &r))

			assert.Equal(t, "A", r.RoomName)
			assert.True(t, tt.want.Equal(r.Timestamp), "got %v", r.Timestamp)
			temp, _ := r.Temperature.Get()
			assert.Equal(t, 22.0, temp)
			assert.True(t, r.PM25.IsKnown())
			assert.False(t, r.CO2Level.IsKnown())
		})
	}
}

func TestSensorReading_BadTimestamp(t *testing.T) {
	var r SensorReading
	assert.Error(t, json.Unmarshal([]byte(`{"room_name": "A", "timestamp": "yesterday"}`), &r))
}

func TestRecommendationRequest_Validate(t *testing.T) {
	temp := 22.0
	neg := -1.0
	zero := 0

	tests := []struct {
		name    string
		req     RecommendationRequest
		wantErr error
	}{
		{"valid", RecommendationRequest{Temperature: &temp, TimeSlot: "08:00-10:00"}, nil},
		{"missing temperature", RecommendationRequest{TimeSlot: "08:00-10:00"}, ErrInvalidTemperature},
		{"missing slot", RecommendationRequest{Temperature: &temp}, ErrInvalidTimeSlot},
		{"bad slot", RecommendationRequest{Temperature: &temp, TimeSlot: "10-8"}, ErrInvalidTimeSlot},
		{"negative noise", RecommendationRequest{Temperature: &temp, TimeSlot: "08:00-10:00", NoiseLevel: &neg}, errAny},
		{"zero top", RecommendationRequest{Temperature: &temp, TimeSlot: "08:00-10:00", TopN: &zero}, errAny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := tt.req.Validate()
			switch tt.wantErr {
			case nil:
				require.NoError(t, err)
				assert.Equal(t, TimeSlot{Start: 480, End: 600}, slot)
			case errAny:
				assert.Error(t, err)
			default:
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

var errAny = errors.New("any error")
