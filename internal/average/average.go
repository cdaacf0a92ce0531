package average

import (
	"sort"
	"time"

	"indexpulse/internal/domain/models"
	"indexpulse/internal/series"
)

// Averager reduces the combined per-security output to one row per date:
// the unweighted mean of each return metric across the securities reporting
// a non-nil value on that date. Pure and stateless; no calendar or currency
// logic of its own.
type Averager struct{}

func NewAverager() *Averager {
	return &Averager{}
}

// accumulator sums one metric column for one date, counting only non-nil
// contributions.
type accumulator struct {
	sum   float64
	count int
}

func (a *accumulator) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.count++
}

func (a *accumulator) mean() *float64 {
	if a.count == 0 {
		return nil
	}
	v := series.Round2(a.sum / float64(a.count))
	return &v
}

// Average groups rows by date and emits the per-date means of the four
// return metrics, rounded to 2 decimals, sorted by date ascending.
func Average(rows []models.MetricRow) []models.AverageRow {
	return NewAverager().Average(rows)
}

func (g *Averager) Average(rows []models.MetricRow) []models.AverageRow {
	type cell struct {
		oneMonth, threeMonth, oneYear, ytd accumulator
	}
	byDate := make(map[time.Time]*cell)

	for _, r := range rows {
		c, ok := byDate[r.Date]
		if !ok {
			c = &cell{}
			byDate[r.Date] = c
		}
		c.oneMonth.add(r.OneMonth)
		c.threeMonth.add(r.ThreeMonth)
		c.oneYear.add(r.OneYear)
		c.ytd.add(r.YTD)
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]models.AverageRow, 0, len(dates))
	for _, d := range dates {
		c := byDate[d]
		out = append(out, models.AverageRow{
			Date:       d,
			OneMonth:   c.oneMonth.mean(),
			ThreeMonth: c.threeMonth.mean(),
			OneYear:    c.oneYear.mean(),
			YTD:        c.ytd.mean(),
		})
	}
	return out
}
