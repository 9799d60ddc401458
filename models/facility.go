package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Facilities holds the static equipment of a room. Booleans are normalised to 0/1.
type Facilities struct {
	VideoProjector    int `json:"videoprojector"`
	SeatingCapacity   int `json:"seating_capacity"`
	Computers         int `json:"computers"`
	RobotsForTraining int `json:"robots_for_training"`
}

// Facility is the facility record of one room.
type Facility struct {
	RoomName   string     `json:"room_name"`
	Facilities Facilities `json:"facilities"`
}

// UnmarshalJSON accepts the nested document form
// {"room_name": "...", "facilities": {"videoprojector": true, ...}} as well as a flat one
// where the facility fields sit next to room_name.
func (f *Facility) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}

	*f = Facility{}
	if raw, ok := top["room_name"]; ok {
		if err := json.Unmarshal(raw, &f.RoomName); err != nil {
			return fmt.Errorf("room_name: %w", err)
		}
	}

	fields := top
	if raw, ok := top["facilities"]; ok && string(raw) != "null" {
		fields = map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return fmt.Errorf("facilities: %w", err)
		}
	}

	targets := map[string]*int{
		"videoprojector":      &f.Facilities.VideoProjector,
		"seating_capacity":    &f.Facilities.SeatingCapacity,
		"computers":           &f.Facilities.Computers,
		"robots_for_training": &f.Facilities.RobotsForTraining,
	}
	for name, dst := range targets {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		v, err := facilityInt(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = v
	}
	return nil
}

func facilityInt(raw json.RawMessage) (int, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	switch val := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case float64:
		return int(val), nil
	case string:
		if b, err := strconv.ParseBool(val); err == nil {
			if b {
				return 1, nil
			}
			return 0, nil
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("value %q is neither boolean nor integer", val)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported JSON type %T", v)
	}
}
