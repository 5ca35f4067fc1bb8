package availability

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
	dateRe  = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
)

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// ParseClock converts an HH:MM string (24h) to minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if !clockRe.MatchString(s) {
		return 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseInterval builds an Interval from HH:MM start and end strings.
// The end must be strictly after the start.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}
	if e <= s {
		return Interval{}, fmt.Errorf("end time %s must be after start time %s", end, start)
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether two half-open intervals share any minute.
func Overlaps(a, b Interval) bool {
	return !(a.End <= b.Start || b.End <= a.Start)
}

// DurationHours returns the interval length in fractional hours.
func (i Interval) DurationHours() float64 {
	return float64(i.End-i.Start) / 60.0
}

// ValidDate reports whether s is a YYYY-MM-DD calendar-shaped date string.
func ValidDate(s string) bool {
	return dateRe.MatchString(strings.TrimSpace(s))
}
