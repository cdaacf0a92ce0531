package models

import "time"

// RateTable is the shared currency-rate table built once per batch and read
// by every per-security computation. It is calendar-dense: one slot per day
// in [Start, End()] for every tracked pair, with nil for days before the
// pair's first observation (forward-fill covers everything after it).
//
// The table is immutable after construction and safe for concurrent reads.
type RateTable struct {
	Start time.Time              // first calendar day, UTC midnight
	Days  int                    // number of calendar days covered
	Pairs []string               // tracked pair names, sorted
	Rates map[string][]*float64  // pair → one rate per day offset; nil = unknown
}

// End returns the last calendar day covered by the table.
func (t *RateTable) End() time.Time {
	return t.Start.AddDate(0, 0, t.Days-1)
}

// Date returns the calendar day at the given offset.
func (t *RateTable) Date(i int) time.Time {
	return t.Start.AddDate(0, 0, i)
}

// DayIndex maps a calendar date to its offset in the table.
// The second return is false when the date falls outside the covered range.
func (t *RateTable) DayIndex(d time.Time) (int, bool) {
	i := int(d.Sub(t.Start).Hours() / 24)
	if i < 0 || i >= t.Days {
		return 0, false
	}
	return i, true
}

// Rate returns the rate of a pair on a given day offset, or nil when the
// pair is untracked, the offset is out of range, or no rate is known yet.
func (t *RateTable) Rate(pair string, day int) *float64 {
	col, ok := t.Rates[pair]
	if !ok || day < 0 || day >= len(col) {
		return nil
	}
	return col[day]
}
