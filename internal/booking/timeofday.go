package booking

import (
	"fmt"
	"strings"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a clock time with minute granularity and no date attached.
// The zero value is midnight.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Compare orders by (hour, minute); negative when t is earlier than o.
func (t TimeOfDay) Compare(o TimeOfDay) int {
	if t.Hour != o.Hour {
		return t.Hour - o.Hour
	}
	return t.Minute - o.Minute
}

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.Compare(o) < 0 }

func (t TimeOfDay) After(o TimeOfDay) bool { return t.Compare(o) > 0 }

// Offset returns the time deltaMinutes away, wrapping across midnight in
// either direction. The result is always a normalized clock time.
func (t TimeOfDay) Offset(deltaMinutes int) TimeOfDay {
	total := t.Hour*60 + t.Minute + deltaMinutes
	total = ((total % minutesPerDay) + minutesPerDay) % minutesPerDay
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

// String renders the 12-hour form used everywhere user-facing, e.g. "6:00pm".
func (t TimeOfDay) String() string {
	period := "am"
	if t.Hour >= 12 {
		period = "pm"
	}
	hour := t.Hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d%s", hour, t.Minute, period)
}

// ParseTimeOfDay parses 12-hour clock strings like "6:00pm", "12:15am" or
// "7pm". The am/pm suffix is required.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	var period string
	switch {
	case strings.HasSuffix(raw, "am"):
		period = "am"
	case strings.HasSuffix(raw, "pm"):
		period = "pm"
	default:
		return TimeOfDay{}, fmt.Errorf("time %q must end in am or pm", s)
	}
	raw = strings.TrimSpace(strings.TrimSuffix(raw, period))

	hourPart, minutePart := raw, "0"
	if i := strings.Index(raw, ":"); i >= 0 {
		hourPart, minutePart = raw[:i], raw[i+1:]
	}
	var hour, minute int
	if _, err := fmt.Sscanf(hourPart, "%d", &hour); err != nil {
		return TimeOfDay{}, fmt.Errorf("time %q: bad hour", s)
	}
	if _, err := fmt.Sscanf(minutePart, "%d", &minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("time %q: bad minute", s)
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time %q out of range", s)
	}
	if period == "pm" && hour < 12 {
		hour += 12
	} else if period == "am" && hour == 12 {
		hour = 0
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// CandidateTimes is an ordered list of times to try, most preferred first.
// The order is try-order, not sorted order.
type CandidateTimes []TimeOfDay

func (c CandidateTimes) String() string {
	parts := make([]string, len(c))
	for i, t := range c {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
