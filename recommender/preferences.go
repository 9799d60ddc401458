package recommender

import "sort"

// Preferences narrow the standards-compliant rows to what the user asked for.
type Preferences struct {
	Temperature        float64
	Tolerance          float64
	NoiseCeiling       float64
	MinSeatingCapacity *int
}

// preferencesFor resolves the noise ceiling of req, which defaults to the standards limit.
func preferencesFor(req Request, opts Options) Preferences {
	p := Preferences{
		Temperature:        req.Temperature,
		Tolerance:          opts.TemperatureTolerance,
		NoiseCeiling:       opts.Standards.SoundMax,
		MinSeatingCapacity: req.MinSeatingCapacity,
	}
	if req.NoiseCeiling != nil {
		p.NoiseCeiling = *req.NoiseCeiling
	}
	return p
}

// Matches reports whether row meets the preferences. Unknown temperature or sound level
// pass; a requested seating minimum needs a facility record to compare against.
func (p Preferences) Matches(row CandidateRow) bool {
	r := row.Reading
	if !r.Temperature.Between(p.Temperature-p.Tolerance, p.Temperature+p.Tolerance) {
		return false
	}
	if !r.SoundLevel.AtMost(p.NoiseCeiling) {
		return false
	}
	if p.MinSeatingCapacity != nil {
		if !row.HasFacilities || row.Facilities.SeatingCapacity < *p.MinSeatingCapacity {
			return false
		}
	}
	return true
}

// FilterPreferences keeps the rows matching p.
func FilterPreferences(rows []CandidateRow, p Preferences) []CandidateRow {
	out := make([]CandidateRow, 0, len(rows))
	for _, row := range rows {
		if p.Matches(row) {
			out = append(out, row)
		}
	}
	return out
}

// availableTemperatures returns the distinct known temperatures of rows, ascending.
func availableTemperatures(rows []CandidateRow) []float64 {
	seen := make(map[float64]struct{})
	var temps []float64
	for _, row := range rows {
		t, ok := row.Reading.Temperature.Get()
		if !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		temps = append(temps, t)
	}
	sort.Float64s(temps)
	return temps
}
