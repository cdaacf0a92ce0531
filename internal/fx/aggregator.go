package fx

import (
	"context"
	"errors"
	"sort"
	"time"

	"indexpulse/internal/domain/models"
	"indexpulse/internal/logger"
	"indexpulse/internal/marketdata"
	"indexpulse/internal/series"
)

// ErrNoRates signals that no tracked pair produced any data. Without a
// currency table there is no shared calendar to align securities to, so the
// whole batch must abort.
var ErrNoRates = errors.New("no currency data for any tracked pair")

// Aggregator builds the shared currency-rate table for one batch: one
// calendar-dense, forward-filled column per tracked pair over the batch's
// historical range.
type Aggregator struct {
	provider marketdata.HistoryProvider
	pairs    map[string]string // pair name → provider symbol
}

// NewAggregator creates an Aggregator over an explicit pair set.
func NewAggregator(provider marketdata.HistoryProvider, pairs map[string]string) *Aggregator {
	return &Aggregator{provider: provider, pairs: pairs}
}

// BuildRateTable fetches each pair's daily observations over [start, end] and
// densifies them onto one table.
//
// Error policy:
//   - A fetch failure (or empty history) for one pair is logged; that pair's
//     column stays all-nil and the other pairs proceed.
//   - If every pair comes back empty, returns ErrNoRates.
func (a *Aggregator) BuildRateTable(ctx context.Context, start, end time.Time) (*models.RateTable, error) {
	start = series.MidnightUTC(start)
	end = series.MidnightUTC(end)
	days := series.DayCount(start, end)

	names := make([]string, 0, len(a.pairs))
	for name := range a.pairs {
		names = append(names, name)
	}
	sort.Strings(names)

	table := &models.RateTable{
		Start: start,
		Days:  days,
		Pairs: names,
		Rates: make(map[string][]*float64, len(names)),
	}

	filled := 0
	for _, name := range names {
		symbol := a.pairs[name]
		obs, err := a.provider.DailyHistory(ctx, symbol, start, end)
		if err != nil {
			logger.L().Error().Str("pair", name).Str("symbol", symbol).Err(err).Msg("currency fetch failed")
			table.Rates[name] = make([]*float64, days)
			continue
		}
		if len(obs) == 0 {
			logger.L().Warn().Str("pair", name).Str("symbol", symbol).Msg("currency history empty")
			table.Rates[name] = make([]*float64, days)
			continue
		}

		points := make([]series.Point, len(obs))
		for i, o := range obs {
			points[i] = series.Point{Date: o.Date, Value: o.Close}
		}
		table.Rates[name] = series.Densify(points, start, end)
		filled++
		logger.L().Info().Str("pair", name).Int("observations", len(obs)).Msg("currency pair loaded")
	}

	if filled == 0 {
		return nil, ErrNoRates
	}
	return table, nil
}
