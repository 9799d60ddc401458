package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTemperature is returned when the temperature preference is missing or not a number.
var ErrInvalidTemperature = errors.New("invalid temperature preference")

// RoomConditions is the aggregated (median) environment of a room over the requested slot.
type RoomConditions struct {
	Temperature Metric `json:"temperature"`
	CO2Level    Metric `json:"co2_level"`
	Humidity    Metric `json:"humidity"`
	SoundLevel  Metric `json:"sound_level"`
	VOCLevel    Metric `json:"voc_level"`
	PM10        Metric `json:"PM10"`
	PM25        Metric `json:"PM2.5"`
	Readings    int    `json:"readings"`
}

// RankedRoom is one entry of a recommendation, rank 1 being the best.
type RankedRoom struct {
	RoomName   string         `json:"room_name"`
	Rank       float64        `json:"rank"`
	Score      float64        `json:"score"`
	Facilities Facilities     `json:"facilities"`
	Conditions RoomConditions `json:"conditions"`
}

// WeightParams overrides the ranking weights of a single request.
type WeightParams struct {
	Facilities  *float64 `json:"facilities,omitempty"`
	Comfort     *float64 `json:"comfort,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Noise       *float64 `json:"noise,omitempty"`
}

// RecommendationRequest is the wire form of POST /v1/recommend.
type RecommendationRequest struct {
	Temperature        *float64      `json:"temperature"`
	TimeSlot           string        `json:"time_slot"`
	NoiseLevel         *float64      `json:"noise_level,omitempty"`
	MinSeatingCapacity *int          `json:"min_seating_capacity,omitempty"`
	Tolerance          *float64      `json:"tolerance,omitempty"`
	TopN               *int          `json:"top_n,omitempty"`
	CheckAvailability  *bool         `json:"check_availability,omitempty"`
	Weights            *WeightParams `json:"weights,omitempty"`
}

// Validate checks the required fields and returns the parsed time slot.
func (r RecommendationRequest) Validate() (TimeSlot, error) {
	if r.Temperature == nil {
		return TimeSlot{}, fmt.Errorf("%w: temperature is required", ErrInvalidTemperature)
	}
	if math.IsNaN(*r.Temperature) || math.IsInf(*r.Temperature, 0) {
		return TimeSlot{}, fmt.Errorf("%w: temperature must be a finite number", ErrInvalidTemperature)
	}
	if r.TimeSlot == "" {
		return TimeSlot{}, fmt.Errorf("%w: time_slot is required", ErrInvalidTimeSlot)
	}
	slot, err := ParseTimeSlot(r.TimeSlot)
	if err != nil {
		return TimeSlot{}, err
	}
	if r.NoiseLevel != nil && (math.IsNaN(*r.NoiseLevel) || *r.NoiseLevel < 0) {
		return TimeSlot{}, errors.New("noise_level must be a non-negative number")
	}
	if r.MinSeatingCapacity != nil && *r.MinSeatingCapacity < 0 {
		return TimeSlot{}, errors.New("min_seating_capacity must not be negative")
	}
	if r.Tolerance != nil && (math.IsNaN(*r.Tolerance) || *r.Tolerance < 0) {
		return TimeSlot{}, errors.New("tolerance must be a non-negative number")
	}
	if r.TopN != nil && *r.TopN <= 0 {
		return TimeSlot{}, errors.New("top_n must be positive")
	}
	return slot, nil
}

// RecommendationResponse is returned when at least one room qualifies.
type RecommendationResponse struct {
	Rooms      []RankedRoom `json:"rooms"`
	SnapshotID string       `json:"snapshot_id"`
}

// NoMatchResponse explains an empty recommendation.
type NoMatchResponse struct {
	Error                 string    `json:"error"`
	Reason                string    `json:"reason"`
	Detail                string    `json:"detail"`
	AvailableTemperatures []float64 `json:"available_temperatures,omitempty"`
}
