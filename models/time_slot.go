package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimeSlot is returned for any time slot that is not "HH:MM-HH:MM" with start < end.
var ErrInvalidTimeSlot = errors.New("invalid time slot, expected format 'HH:MM-HH:MM'")

const clockLayout = "15:04"

// TimeSlot is a window between two times of day, stored as minutes from midnight.
type TimeSlot struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ParseTimeSlot parses "HH:MM-HH:MM". Blanks around either bound are ignored, so the agenda's
// "08:00 - 10:00" spelling is accepted too.
func ParseTimeSlot(s string) (TimeSlot, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return TimeSlot{}, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, s)
	}
	start, err := ParseClock(parts[0])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, s)
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return TimeSlot{}, fmt.Errorf("%w: %q", ErrInvalidTimeSlot, s)
	}
	if start >= end {
		return TimeSlot{}, fmt.Errorf("%w: start must be before end in %q", ErrInvalidTimeSlot, s)
	}
	return TimeSlot{Start: start, End: end}, nil
}

// ParseClock converts "HH:MM" into minutes from midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes from midnight back into "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func (ts TimeSlot) String() string {
	return FormatClock(ts.Start) + "-" + FormatClock(ts.End)
}

// CoversClock reports whether the time of day of t lies inside the slot, both bounds included.
func (ts TimeSlot) CoversClock(t time.Time) bool {
	h, m, s := t.Clock()
	sec := h*3600 + m*60 + s
	return ts.Start*60 <= sec && sec <= ts.End*60
}

// Within reports whether ts lies completely inside other.
func (ts TimeSlot) Within(other TimeSlot) bool {
	return other.Start <= ts.Start && ts.End <= other.End
}
