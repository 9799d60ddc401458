package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Metric is a sensor value that may be unknown. Readings without a given sensor carry the
// Unknown variant and every filter treats it as satisfied.
type Metric struct {
	value float64
	known bool
}

// Unknown is the zero Metric.
var Unknown = Metric{}

// Known wraps a measured value.
func Known(v float64) Metric {
	return Metric{value: v, known: true}
}

// Get returns the value and whether it was measured.
func (m Metric) Get() (float64, bool) {
	return m.value, m.known
}

func (m Metric) IsKnown() bool {
	return m.known
}

// AtMost is true when the value is unknown or <= limit.
func (m Metric) AtMost(limit float64) bool {
	return !m.known || m.value <= limit
}

// Between is true when the value is unknown or inside [lo, hi].
func (m Metric) Between(lo, hi float64) bool {
	return !m.known || (lo <= m.value && m.value <= hi)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.known {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (m *Metric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = Unknown
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*m = Known(v)
	case string:
		if v == "" {
			*m = Unknown
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("metric %q is not numeric: %w", v, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("metric %q is not a finite number", v)
		}
		*m = Known(f)
	default:
		return fmt.Errorf("metric has unsupported JSON type %T", raw)
	}
	return nil
}

func (m Metric) String() string {
	if !m.known {
		return "unknown"
	}
	return strconv.FormatFloat(m.value, 'f', -1, 64)
}
