// Package workload aggregates assignment records into weekly utilization series.
package workload

import (
	"fmt"
	"time"
)

const week = 7 * 24 * time.Hour

// Horizon is the forward window of whole weeks a forecast covers.
// Start is always a Monday at 00:00 UTC.
type Horizon struct {
	Start time.Time
	Weeks int
}

// NewHorizon returns the horizon of weeksAhead weeks beginning with the week containing now.
func NewHorizon(now time.Time, weeksAhead int) (Horizon, error) {
	if weeksAhead <= 0 {
		return Horizon{}, &InputError{Field: "weeks_ahead", Message: fmt.Sprintf("must be a positive integer, got %d", weeksAhead)}
	}
	return Horizon{Start: WeekStart(now), Weeks: weeksAhead}, nil
}

// End returns the exclusive end of the horizon.
func (h Horizon) End() time.Time {
	return h.Start.AddDate(0, 0, 7*h.Weeks)
}

// WeekStarts returns the Monday of every week in the horizon, in order.
func (h Horizon) WeekStarts() []time.Time {
	starts := make([]time.Time, h.Weeks)
	for i := range starts {
		starts[i] = h.Start.AddDate(0, 0, 7*i)
	}
	return starts
}

// Contains reports whether t falls inside [Start, End).
func (h Horizon) Contains(t time.Time) bool {
	return !t.Before(h.Start) && t.Before(h.End())
}

// WeekStart returns the Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	// time.Sunday == 0, shift so Monday is offset 0
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekEnd returns the exclusive end of the week starting at weekStart.
func WeekEnd(weekStart time.Time) time.Time {
	return weekStart.Add(week)
}

// Overlaps reports whether an inclusive [start, end] record intersects the half-open
// window [windowStart, windowEnd). A record ending exactly on windowStart counts;
// one starting exactly on windowEnd does not.
func Overlaps(start, end, windowStart, windowEnd time.Time) bool {
	return start.Before(windowEnd) && !end.Before(windowStart)
}
