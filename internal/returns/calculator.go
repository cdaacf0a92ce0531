package returns

import (
	"errors"
	"time"

	"indexpulse/internal/domain/models"
	"indexpulse/internal/logger"
	"indexpulse/internal/series"
)

// ErrNoPrices signals that a security produced no observations to compute
// metrics over; the security contributes nothing to the batch.
var ErrNoPrices = errors.New("no price observations for security")

// trailing windows: lookback in calendar months per metric.
var windows = []struct {
	months int
	label  string
}{
	{1, "1-month"},
	{3, "3-month"},
	{12, "1-year"},
}

// Calculator derives one security's USD-normalized price series and its
// trailing-window return metrics over the shared currency table's calendar.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute produces the security's full metric series over
// [rates.Start, rates.End()].
//
// Steps:
//  1. Densify the security's own observations onto the table's full calendar
//     (leading days before inception stay nil).
//  2. Normalize each day's price to USD: native USD passes through (rounded),
//     INR divides by the USD/INR rate, and every other non-USD currency
//     divides by the USD/EURO rate. Nil when price or rate is absent.
//  3. USD beginning price of day D is the USD end price of day D−1.
//  4. YTD compares against the literal Jan 1 row of D's year; the trailing
//     windows compare against the row exactly 1/3/12 calendar months back
//     (day-of-month preserved, clamped on month overflow).
//
// Returns ErrNoPrices when obs is empty.
func (c *Calculator) Compute(sec models.Security, obs []models.PriceObservation, rates *models.RateTable) ([]models.MetricRow, error) {
	if len(obs) == 0 {
		return nil, ErrNoPrices
	}

	points := make([]series.Point, len(obs))
	for i, o := range obs {
		points[i] = series.Point{Date: o.Date, Value: o.Close}
	}
	prices := series.Densify(points, rates.Start, rates.End())
	if len(prices) != rates.Days {
		return nil, ErrNoPrices
	}

	usdEnd := c.normalizeUSD(sec.Currency, prices, rates)

	rows := make([]models.MetricRow, rates.Days)
	for i := 0; i < rates.Days; i++ {
		date := rates.Date(i)
		row := models.MetricRow{
			AccountName: sec.Name,
			Currency:    sec.Currency,
			Exchange:    sec.Exchange,
			Ticker:      sec.Ticker,
			Date:        date,
			EndPrice:    prices[i],
			UsdEuro:     rates.Rate("USD/EURO", i),
			UsdInr:      rates.Rate("USD/INR", i),
			USDEnd:      usdEnd[i],
		}
		if i > 0 {
			row.USDBeg = usdEnd[i-1]
		}

		row.YTD = c.yearToDate(date, i, usdEnd, rates)

		for w, win := range windows {
			metric := c.trailing(sec.Ticker, date, i, win.months, win.label, usdEnd, rates)
			switch w {
			case 0:
				row.OneMonth = metric
			case 1:
				row.ThreeMonth = metric
			case 2:
				row.OneYear = metric
			}
		}

		rows[i] = row
	}
	return rows, nil
}

// normalizeUSD converts the dense native-currency price series to USD.
// Anything not literally "INR" or "USD" converts through the USD/EURO pair.
func (c *Calculator) normalizeUSD(currency string, prices []*float64, rates *models.RateTable) []*float64 {
	out := make([]*float64, len(prices))

	if currency == "USD" {
		for i, p := range prices {
			if p == nil {
				continue
			}
			v := series.Round2(*p)
			out[i] = &v
		}
		return out
	}

	pair := "USD/EURO"
	if currency == "INR" {
		pair = "USD/INR"
	}
	for i, p := range prices {
		rate := rates.Rate(pair, i)
		if p == nil || rate == nil {
			continue
		}
		v := series.Round2(*p / *rate)
		out[i] = &v
	}
	return out
}

// yearToDate returns (USD_end[D] / USD_end[Jan 1 of D's year]) − 1, rounded.
// Nil unless Jan 1 of that year is a row in this series with a non-nil USD
// end price; no fallback to the nearest trading day.
func (c *Calculator) yearToDate(date time.Time, i int, usdEnd []*float64, rates *models.RateTable) *float64 {
	jan1 := time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	j, ok := rates.DayIndex(jan1)
	if !ok || usdEnd[j] == nil || usdEnd[i] == nil {
		return nil
	}
	v := series.Round2(*usdEnd[i] / *usdEnd[j] - 1)
	return &v
}

// trailing returns the N-calendar-month return ending at day i, or nil when
// the lookback row is outside the series or either USD end price is absent.
func (c *Calculator) trailing(ticker string, date time.Time, i, months int, label string, usdEnd []*float64, rates *models.RateTable) *float64 {
	lookback := series.AddMonths(date, -months)
	j, ok := rates.DayIndex(lookback)
	if !ok {
		return nil
	}
	if usdEnd[j] == nil || usdEnd[i] == nil {
		logger.L().Warn().
			Str("ticker", ticker).
			Str("metric", label).
			Str("date", date.Format("2006-01-02")).
			Str("lookback", lookback.Format("2006-01-02")).
			Msg("missing USD price for trailing return")
		return nil
	}
	v := series.Round2(*usdEnd[i] / *usdEnd[j] - 1)
	return &v
}
