package usage

import (
	"strings"
	"time"
)

const dayLayout = "2006-01-02"

// Layouts tried, in order, for free-form date-times. Zone-less layouts are
// read in the filter location.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	time.RFC1123Z,
	time.RFC1123,
}

// parseCalendarDay reads a Y-M-D calendar date as midnight UTC. Each part
// only needs to start with an integer, and out-of-range months or days roll
// over the way a calendar does.
func parseCalendarDay(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	parts := strings.Split(value, "-")
	if len(parts) < 3 {
		return time.Time{}, false
	}
	y, ok := leadingInt(parts[0])
	if !ok {
		return time.Time{}, false
	}
	m, ok := leadingInt(parts[1])
	if !ok {
		return time.Time{}, false
	}
	d, ok := leadingInt(parts[2])
	if !ok {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

// parseCalendarDate reads a calendar date as the first instant of that day in loc.
func parseCalendarDate(value string, loc *time.Location) (time.Time, bool) {
	day, ok := parseCalendarDay(value)
	if !ok {
		return time.Time{}, false
	}
	return dayStart(day, loc), true
}

// parseDateTime reads a timestamp in any of the accepted layouts, truncated to
// the millisecond. A bare date is midnight UTC.
func parseDateTime(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dayLayout, value); err == nil {
		return t, true
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.Truncate(time.Millisecond), true
		}
	}
	return time.Time{}, false
}

// parseBound resolves a range bound: calendar date first, free-form second.
func parseBound(value string, loc *time.Location) (time.Time, bool) {
	if t, ok := parseCalendarDate(value, loc); ok {
		return t, true
	}
	return parseDateTime(value, loc)
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		digits++
		if digits > 9 {
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// calendarDay drops the clock and zone of t, keeping its wall-clock date.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dayStart is the first instant of the calendar day in loc. Where a DST change
// skips midnight, time.Date lands on the previous day and the day starts at the
// first wall-clock minute that exists.
func dayStart(day time.Time, loc *time.Location) time.Time {
	t := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	for i := 0; i < 24*60 && calendarDay(t).Before(day); i++ {
		t = t.Add(time.Minute)
	}
	return t
}

// endOfDay is the last millisecond before the next day starts in loc.
func endOfDay(t time.Time, loc *time.Location) time.Time {
	next := calendarDay(t.In(loc)).AddDate(0, 0, 1)
	return dayStart(next, loc).Add(-time.Millisecond)
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// DefaultRange returns the last `days` days up to and including today.
func DefaultRange(now time.Time, days int, loc *time.Location) (from, to string) {
	if loc == nil {
		loc = time.Local
	}
	today := calendarDay(now.In(loc))
	return today.AddDate(0, 0, -days).Format(dayLayout), today.Format(dayLayout)
}

// RangeDays is the number of calendar days the filter covers, both ends
// included. ok is false unless both bounds are calendar dates.
func RangeDays(f Filter) (days int, ok bool) {
	start, okFrom := parseCalendarDay(f.From)
	end, okTo := parseCalendarDay(f.To)
	if !okFrom || !okTo {
		return 0, false
	}
	if end.Before(start) {
		return 0, true
	}
	return int(end.Sub(start).Hours()/24) + 1, true
}
