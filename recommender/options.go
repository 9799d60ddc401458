package recommender

import "roomrec-server/models"

// Standards are the regulatory comfort thresholds applied to every reading.
type Standards struct {
	CO2Max         float64 `json:"co2_level"`
	TemperatureMin float64 `json:"temperature_min"`
	TemperatureMax float64 `json:"temperature_max"`
	HumidityMin    float64 `json:"humidity_min"`
	HumidityMax    float64 `json:"humidity_max"`
	VOCMax         float64 `json:"voc_level"` // WHO guideline (ppb)
	PM10Max        float64 `json:"PM10"`      // µg/m³
	PM25Max        float64 `json:"PM2.5"`     // µg/m³
	SoundMax       float64 `json:"sound_level"`
}

// DefaultStandards returns the fixed thresholds. A fresh value is returned on every call.
func DefaultStandards() Standards {
	return Standards{
		CO2Max:         1000,
		TemperatureMin: 19,
		TemperatureMax: 28,
		HumidityMin:    30,
		HumidityMax:    70,
		VOCMax:         400,
		PM10Max:        50,
		PM25Max:        25,
		SoundMax:       45,
	}
}

// Weights combine the facilities and comfort scores into the ranking score.
// Temperature and Noise add the aggregated temperature / sound level on top of the
// comfort mean and are zero unless a caller asks for them.
type Weights struct {
	Facilities  float64 `json:"facilities"`
	Comfort     float64 `json:"comfort"`
	Temperature float64 `json:"temperature"`
	Noise       float64 `json:"noise"`
}

// FacilityWeights select which facility indicators count towards the facilities score.
// A zero weight leaves the indicator out.
type FacilityWeights struct {
	VideoProjector    float64 `json:"videoprojector"`
	SeatingCapacity   float64 `json:"seating_capacity"`
	Computers         float64 `json:"computers"`
	RobotsForTraining float64 `json:"robots_for_training"`
}

// Options parameterise one pipeline run.
type Options struct {
	TemperatureTolerance float64
	TopN                 int
	CheckAvailability    bool
	Weights              Weights
	FacilityWeights      FacilityWeights
	Standards            Standards
}

const (
	DefaultTemperatureTolerance = 1.0
	DefaultTopN                 = 10
)

// DefaultOptions returns the options used when a caller overrides nothing.
func DefaultOptions() Options {
	return Options{
		TemperatureTolerance: DefaultTemperatureTolerance,
		TopN:                 DefaultTopN,
		CheckAvailability:    false,
		Weights:              Weights{Facilities: 0.5, Comfort: 0.5},
		FacilityWeights: FacilityWeights{
			VideoProjector:    1,
			SeatingCapacity:   1,
			Computers:         1,
			RobotsForTraining: 1,
		},
		Standards: DefaultStandards(),
	}
}

// Request is a validated recommendation request.
type Request struct {
	TimeSlot           models.TimeSlot
	Temperature        float64
	NoiseCeiling       *float64
	MinSeatingCapacity *int
}
