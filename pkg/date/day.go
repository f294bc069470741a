package date

import (
	"time"
)

// ParseDay parses a YYYY-MM-DD string as midnight in location
func ParseDay(value string, location *time.Location) (time.Time, error) {
	return time.ParseInLocation(Layout, value, location)
}

// StartOfDay truncates t to local midnight in its location
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DayBounds returns the span from local midnight of day to the following midnight.
// On DST transitions the span is 23 or 25 hours long.
func DayBounds(day time.Time) Timespan {
	start := StartOfDay(day)
	return Timespan{Start: start, End: start.AddDate(0, 0, 1)}
}

// Range returns count consecutive local days ending with end, oldest first
func Range(end time.Time, count int) []time.Time {
	if count <= 0 {
		return nil
	}

	end = StartOfDay(end)
	days := make([]time.Time, count)
	for i := 0; i < count; i++ {
		days[i] = end.AddDate(0, 0, i-count+1)
	}

	return days
}

// IsWeekend reports whether t falls on Saturday or Sunday in its location
func IsWeekend(t time.Time) bool {
	weekday := t.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// MinutesOutsideClock returns the minutes of span that fall outside the daily clock window [startHour, endHour)
// in location
func MinutesOutsideClock(span Timespan, startHour int, endHour int, location *time.Location) float64 {
	if !span.IsStartBeforeEnd() {
		return 0
	}

	span = span.In(location)
	total := span.Minutes()
	inside := 0.0

	for day := StartOfDay(span.Start); day.Before(span.End); day = day.AddDate(0, 0, 1) {
		window := Timespan{
			Start: time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, location),
			End:   time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, location),
		}
		inside += span.Overlap(window).Minutes()
	}

	return total - inside
}
