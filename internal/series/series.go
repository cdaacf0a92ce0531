package series

import (
	"math"
	"sort"
	"time"
)

// Point is one sparse observation: a value on a calendar date.
type Point struct {
	Date  time.Time
	Value float64
}

// MidnightUTC truncates a timestamp to its calendar day at UTC midnight.
// Every date in the system is normalized through this before indexing.
func MidnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayCount returns the number of calendar days in [start, end], inclusive.
// Returns 0 when end precedes start.
func DayCount(start, end time.Time) int {
	n := int(end.Sub(start).Hours()/24) + 1
	if n < 0 {
		return 0
	}
	return n
}

// DayIndex returns the offset of d in a dense daily series beginning at start.
// Negative when d precedes start.
func DayIndex(start, d time.Time) int {
	return int(d.Sub(start).Hours() / 24)
}

// Densify expands a sparse date-keyed series onto the contiguous daily
// calendar [start, end]: exactly one slot per day, where a day without an
// observation inherits the most recent prior observed value and days before
// the first observation stay nil. Duplicate input dates collapse to one slot.
// Observations before start seed the fill value at start; observations after
// end are ignored.
//
// An empty input yields a nil series; callers must treat that as an upstream
// failure and abort the dependent computation.
func Densify(points []Point, start, end time.Time) []*float64 {
	if len(points) == 0 {
		return nil
	}
	start = MidnightUTC(start)
	end = MidnightUTC(end)
	n := DayCount(start, end)
	if n == 0 {
		return nil
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	for i := range sorted {
		sorted[i].Date = MidnightUTC(sorted[i].Date)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make([]*float64, n)
	var last *float64
	next := 0

	// Observations strictly before the range still carry forward into it.
	for next < len(sorted) && sorted[next].Date.Before(start) {
		v := sorted[next].Value
		last = &v
		next++
	}

	for i := 0; i < n; i++ {
		day := start.AddDate(0, 0, i)
		for next < len(sorted) && !sorted[next].Date.After(day) {
			v := sorted[next].Value
			last = &v
			next++
		}
		out[i] = last
	}
	return out
}

// AddMonths shifts a date by the given number of calendar months, preserving
// the day-of-month and clamping to the last day of the target month on
// overflow (Mar 31 − 1 month → Feb 28/29). time.AddDate normalizes overflow
// forward instead, which is the wrong behavior for lookback dates.
func AddMonths(d time.Time, months int) time.Time {
	d = MidnightUTC(d)
	y, m, day := d.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
