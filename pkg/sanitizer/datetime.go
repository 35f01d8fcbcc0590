package sanitizer

import (
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// NormalizeDate returns the date as YYYY-MM-DD, or "" when it is not a calendar date.
func NormalizeDate(date string) string {
	d, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return ""
	}
	return d.Format(DateLayout)
}

// NormalizeClock returns a 24h HH:MM time, accepting a single-digit hour ("9:00").
// Anything else yields "".
func NormalizeClock(clock string) string {
	clock = strings.TrimSpace(clock)
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok || len(mm) != 2 || len(hh) == 0 || len(hh) > 2 {
		return ""
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return ""
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return ""
	}

	return time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC).Format(TimeLayout)
}

// AddToClock adds d to an HH:MM time. ok is false when clock does not parse.
func AddToClock(clock string, d time.Duration) (string, bool) {
	normalized := NormalizeClock(clock)
	if normalized == "" {
		return "", false
	}
	t, err := time.Parse(TimeLayout, normalized)
	if err != nil {
		return "", false
	}
	return t.Add(d).Format(TimeLayout), true
}

// ClockSpan returns how long after start the end clock falls, wrapping past
// midnight, so 23:45 to 00:15 is 30 minutes. ok is false when either does not parse.
func ClockSpan(start, end string) (time.Duration, bool) {
	s, err := time.Parse(TimeLayout, NormalizeClock(start))
	if err != nil {
		return 0, false
	}
	e, err := time.Parse(TimeLayout, NormalizeClock(end))
	if err != nil {
		return 0, false
	}
	span := e.Sub(s)
	if span < 0 {
		span += 24 * time.Hour
	}
	return span, true
}

// CompactDate turns YYYY-MM-DD into YYYYMMDD.
func CompactDate(date string) string {
	return strings.ReplaceAll(date, "-", "")
}
