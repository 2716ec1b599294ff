package booking

import (
	"fmt"
	"strings"
)

// TimeWindow is an inclusive range of clock times, Min <= Max.
type TimeWindow struct {
	Min TimeOfDay
	Max TimeOfDay
}

func (w TimeWindow) Contains(t TimeOfDay) bool {
	return t.Compare(w.Min) >= 0 && t.Compare(w.Max) <= 0
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s - %s", w.Min, w.Max)
}

// ParseTimeWindow parses "5:00pm - 8:00pm".
func ParseTimeWindow(s string) (TimeWindow, error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return TimeWindow{}, fmt.Errorf("window %q: want \"min - max\"", s)
	}
	min, err := ParseTimeOfDay(parts[0])
	if err != nil {
		return TimeWindow{}, err
	}
	max, err := ParseTimeOfDay(parts[1])
	if err != nil {
		return TimeWindow{}, err
	}
	if max.Before(min) {
		return TimeWindow{}, fmt.Errorf("window %q: %s is after %s", s, min, max)
	}
	return TimeWindow{Min: min, Max: max}, nil
}
