package recommender

import "roomrec-server/models"

// CandidateRow is one sensor reading joined with its room's facilities, valid for a single
// recommendation request.
type CandidateRow struct {
	Reading       models.SensorReading
	Facilities    models.Facilities
	HasFacilities bool
}

// Satisfies reports whether every known metric of r is inside the thresholds.
// Unknown metrics pass.
func (st Standards) Satisfies(r models.SensorReading) bool {
	return r.CO2Level.AtMost(st.CO2Max) &&
		r.Temperature.Between(st.TemperatureMin, st.TemperatureMax) &&
		r.Humidity.Between(st.HumidityMin, st.HumidityMax) &&
		r.VOCLevel.AtMost(st.VOCMax) &&
		r.PM10.AtMost(st.PM10Max) &&
		r.PM25.AtMost(st.PM25Max) &&
		r.SoundLevel.AtMost(st.SoundMax)
}

// TemperatureInRange reports whether t lies inside the regulatory temperature band.
func (st Standards) TemperatureInRange(t float64) bool {
	return st.TemperatureMin <= t && t <= st.TemperatureMax
}

// FilterStandards keeps the rows whose readings satisfy st.
func FilterStandards(rows []CandidateRow, st Standards) []CandidateRow {
	out := make([]CandidateRow, 0, len(rows))
	for _, row := range rows {
		if st.Satisfies(row.Reading) {
			out = append(out, row)
		}
	}
	return out
}

// AbsentMetrics lists the metrics that no row carries at all. Their filters degrade to
// pass-through for the whole row set.
func AbsentMetrics(rows []CandidateRow) []models.MetricName {
	var absent []models.MetricName
	for _, name := range models.AllMetrics {
		present := false
		for _, row := range rows {
			if row.Reading.Metric(name).IsKnown() {
				present = true
				break
			}
		}
		if !present {
			absent = append(absent, name)
		}
	}
	return absent
}
