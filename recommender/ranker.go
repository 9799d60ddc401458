package recommender

import (
	"sort"

	"roomrec-server/models"
)

// FacilitiesScore is the weighted sum of the facility indicators.
func FacilitiesScore(f models.Facilities, w FacilityWeights) float64 {
	return float64(f.VideoProjector)*w.VideoProjector +
		float64(f.SeatingCapacity)*w.SeatingCapacity +
		float64(f.Computers)*w.Computers +
		float64(f.RobotsForTraining)*w.RobotsForTraining
}

// ComfortScore is the plain mean of the known aggregated temperature, CO2, humidity and
// sound level. The units differ and are summed as they are; zero when none is known.
func ComfortScore(c models.RoomConditions) float64 {
	var sum float64
	var n int
	for _, m := range []models.Metric{c.Temperature, c.CO2Level, c.Humidity, c.SoundLevel} {
		if v, ok := m.Get(); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Score combines facilities and comfort with the configured weights; higher is better.
func Score(a RoomAggregate, opts Options) float64 {
	score := FacilitiesScore(a.Facilities, opts.FacilityWeights)*opts.Weights.Facilities +
		ComfortScore(a.Conditions)*opts.Weights.Comfort
	if t, ok := a.Conditions.Temperature.Get(); ok {
		score += t * opts.Weights.Temperature
	}
	if s, ok := a.Conditions.SoundLevel.Get(); ok {
		score += s * opts.Weights.Noise
	}
	return score
}

// Rank orders aggregates by descending score and numbers them from 1. Equal scores keep
// their input order, so the first-seen room gets the lower rank. The result is cut to
// opts.TopN when it is positive.
func Rank(aggs []RoomAggregate, opts Options) []models.RankedRoom {
	type scored struct {
		agg   RoomAggregate
		score float64
	}
	items := make([]scored, len(aggs))
	for i, a := range aggs {
		items[i] = scored{agg: a, score: Score(a, opts)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	if opts.TopN > 0 && len(items) > opts.TopN {
		items = items[:opts.TopN]
	}

	ranked := make([]models.RankedRoom, len(items))
	for i, it := range items {
		ranked[i] = models.RankedRoom{
			RoomName:   it.agg.RoomName,
			Rank:       float64(i + 1),
			Score:      it.score,
			Facilities: it.agg.Facilities,
			Conditions: it.agg.Conditions,
		}
	}
	return ranked
}
