package date

import (
	"time"
)

// Layout is the calendar date format used on the API and in storage
const Layout = "2006-01-02"

// TimeBeforeOrEquals returns whether t1 is before or equal t2
func TimeBeforeOrEquals(t1 time.Time, t2 time.Time) bool {
	ts := t1.UnixNano()
	us := t2.UnixNano()
	return ts <= us
}

// TimeAfterOrEquals returns whether t1 is after or equal t2
func TimeAfterOrEquals(t1 time.Time, t2 time.Time) bool {
	ts := t1.UnixNano()
	us := t2.UnixNano()
	return ts >= us
}

// Timespan is a simple timespan between to times/dates
type Timespan struct {
	Start time.Time `json:"start" bson:"start" validate:"required"`
	End   time.Time `json:"end" bson:"end"`
}

// Duration simply get the duration of a Timespan
func (t *Timespan) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// Minutes returns the duration in fractional minutes
func (t *Timespan) Minutes() float64 {
	return t.Duration().Minutes()
}

// IsStartBeforeEnd checks if start is earlier than end
func (t *Timespan) IsStartBeforeEnd() bool {
	return t.Start.Before(t.End)
}

// In changes the location on a Timespan
func (t *Timespan) In(location *time.Location) Timespan {
	t.Start = t.Start.In(location)
	t.End = t.End.In(location)

	return *t
}

// IntersectsWith checks if one timespan intersects with another
func (t *Timespan) IntersectsWith(timespan Timespan) bool {
	if t.Start.Before(timespan.End) && t.End.After(timespan.Start) {
		return true
	}

	return false
}

// Contains checks if one timespan t contains another Timespan timespan
func (t *Timespan) Contains(timespan Timespan) bool {
	if TimeAfterOrEquals(timespan.Start, t.Start) &&
		TimeBeforeOrEquals(timespan.End, t.End) {
		return true
	}

	return false
}

// Includes checks if moment lies within t, both ends inclusive
func (t *Timespan) Includes(moment time.Time) bool {
	return t.Contains(Timespan{Start: moment, End: moment})
}

// Overlap returns the part of t that lies within timespan, zero when they do not intersect
func (t *Timespan) Overlap(timespan Timespan) time.Duration {
	if !t.IntersectsWith(timespan) {
		return 0
	}

	start := t.Start
	if timespan.Start.After(start) {
		start = timespan.Start
	}

	end := t.End
	if timespan.End.Before(end) {
		end = timespan.End
	}

	return end.Sub(start)
}
