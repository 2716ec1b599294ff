package booking

import (
	"fmt"
	"strings"
	"time"
)

// CalendarDate is a proleptic Gregorian date with no time component.
type CalendarDate struct {
	Year  int
	Month int
	Day   int
}

// Compare orders lexicographically on (year, month, day).
func (d CalendarDate) Compare(o CalendarDate) int {
	if d.Year != o.Year {
		return d.Year - o.Year
	}
	if d.Month != o.Month {
		return d.Month - o.Month
	}
	return d.Day - o.Day
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%d/%d/%d", d.Month, d.Day, d.Year)
}

// ISO renders YYYY-MM-DD, the form venue sites take in query params.
func (d CalendarDate) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func dateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// resolveYear picks the soonest future occurrence of month/day: this year if
// the date has not yet passed relative to today, otherwise next year.
func resolveYear(month, day int, today time.Time) int {
	year := today.Year()
	if month < int(today.Month()) || (month == int(today.Month()) && day < today.Day()) {
		return year + 1
	}
	return year
}

func parseSingleDate(s string, today time.Time) (CalendarDate, error) {
	var month, day int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d/%d", &month, &day); err != nil {
		return CalendarDate{}, fmt.Errorf("date %q: want M/D", s)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return CalendarDate{}, fmt.Errorf("date %q out of range", s)
	}
	return CalendarDate{Year: resolveYear(month, day, today), Month: month, Day: day}, nil
}

// ParseDates parses a date list like "10/24", "10/23 - 10/25",
// "10/23, 10/25" or combinations. Ranges expand day by day; list order is
// the caller's preference order and is preserved. Years are resolved to the
// soonest future occurrence relative to today.
func ParseDates(s string, today time.Time) ([]CalendarDate, error) {
	var out []CalendarDate
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "-") {
			d, err := parseSingleDate(part, today)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		start, err := parseSingleDate(bounds[0], today)
		if err != nil {
			return nil, err
		}
		end, err := parseSingleDate(bounds[1], today)
		if err != nil {
			return nil, err
		}
		if end.Compare(start) < 0 {
			return nil, fmt.Errorf("date range %q ends before it starts", part)
		}
		cur := time.Date(start.Year, time.Month(start.Month), start.Day, 0, 0, 0, 0, time.UTC)
		last := time.Date(end.Year, time.Month(end.Month), end.Day, 0, 0, 0, 0, time.UTC)
		for !cur.After(last) {
			out = append(out, dateOf(cur))
			cur = cur.AddDate(0, 0, 1)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no dates in %q", s)
	}
	return out, nil
}
