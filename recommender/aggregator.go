package recommender

import (
	"sort"

	"roomrec-server/models"
)

// RoomAggregate is the single summary row of a room that survived filtering.
type RoomAggregate struct {
	RoomName      string
	Facilities    models.Facilities
	HasFacilities bool
	Conditions    models.RoomConditions
}

// Aggregate groups rows by room in order of first appearance. Comfort metrics become the
// median of the room's known values; facilities take the first observed record.
func Aggregate(rows []CandidateRow) []RoomAggregate {
	index := make(map[string]int)
	var aggs []RoomAggregate
	var groups [][]models.SensorReading

	for _, row := range rows {
		name := row.Reading.RoomName
		i, ok := index[name]
		if !ok {
			i = len(aggs)
			index[name] = i
			aggs = append(aggs, RoomAggregate{
				RoomName:      name,
				Facilities:    row.Facilities,
				HasFacilities: row.HasFacilities,
			})
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], row.Reading)
	}

	for i, readings := range groups {
		aggs[i].Conditions = models.RoomConditions{
			Temperature: medianOf(readings, models.MetricTemperature),
			CO2Level:    medianOf(readings, models.MetricCO2),
			Humidity:    medianOf(readings, models.MetricHumidity),
			SoundLevel:  medianOf(readings, models.MetricSound),
			VOCLevel:    medianOf(readings, models.MetricVOC),
			PM10:        medianOf(readings, models.MetricPM10),
			PM25:        medianOf(readings, models.MetricPM25),
			Readings:    len(readings),
		}
	}
	return aggs
}

func medianOf(readings []models.SensorReading, name models.MetricName) models.Metric {
	vals := make([]float64, 0, len(readings))
	for _, r := range readings {
		if v, ok := r.Metric(name).Get(); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return models.Unknown
	}
	return models.Known(median(vals))
}

// median sorts vals in place. Even-sized inputs average the two middle values.
func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}
