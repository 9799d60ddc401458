package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MetricName identifies one environmental column of a sensor reading.
type MetricName string

const (
	MetricTemperature MetricName = "temperature"
	MetricCO2         MetricName = "co2_level"
	MetricHumidity    MetricName = "humidity"
	MetricVOC         MetricName = "voc_level"
	MetricPM10        MetricName = "PM10"
	MetricPM25        MetricName = "PM2.5"
	MetricSound       MetricName = "sound_level"
)

// AllMetrics lists every environmental column in a fixed order.
var AllMetrics = []MetricName{
	MetricTemperature, MetricCO2, MetricHumidity, MetricVOC, MetricPM10, MetricPM25, MetricSound,
}

// SensorReading is one timestamped set of environmental measurements for a room.
type SensorReading struct {
	RoomName    string    `json:"room_name"`
	Timestamp   time.Time `json:"timestamp"`
	Temperature Metric    `json:"temperature"`
	CO2Level    Metric    `json:"co2_level"`
	Humidity    Metric    `json:"humidity"`
	VOCLevel    Metric    `json:"voc_level"`
	PM10        Metric    `json:"PM10"`
	PM25        Metric    `json:"PM2.5"`
	SoundLevel  Metric    `json:"sound_level"`
}

// Metric returns the named column.
func (r SensorReading) Metric(name MetricName) Metric {
	switch name {
	case MetricTemperature:
		return r.Temperature
	case MetricCO2:
		return r.CO2Level
	case MetricHumidity:
		return r.Humidity
	case MetricVOC:
		return r.VOCLevel
	case MetricPM10:
		return r.PM10
	case MetricPM25:
		return r.PM25
	case MetricSound:
		return r.SoundLevel
	}
	return Unknown
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// UnmarshalJSON accepts RFC3339 timestamps, naive "YYYY-MM-DD[T ]HH:MM[:SS]" timestamps
// (read in UTC) and unix milliseconds.
func (r *SensorReading) UnmarshalJSON(data []byte) error {
	type Alias SensorReading
	aux := &struct {
		Timestamp interface{} `json:"timestamp"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	switch ts := aux.Timestamp.(type) {
	case nil:
		r.Timestamp = time.Time{}
	case float64:
		r.Timestamp = time.UnixMilli(int64(ts)).UTC()
	case string:
		parsed, err := ParseTimestamp(ts)
		if err != nil {
			return err
		}
		r.Timestamp = parsed
	default:
		return fmt.Errorf("timestamp has unsupported JSON type %T", ts)
	}
	return nil
}

// ParseTimestamp parses the timestamp spellings found in stored sensor documents.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
