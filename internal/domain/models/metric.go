package models

import "time"

// MetricRow is one (security, calendar date) row of the final output:
// identity fields, the raw end-of-day price, the USD-normalized prices, the
// four trailing return metrics, and the two FX rates joined onto that date.
//
// Optional values are *float64; nil means the value is absent on that date
// (before the security's inception, before a pair's first FX observation, or
// a lookback that resolved to an absent value). Downstream arithmetic must
// check for nil explicitly.
type MetricRow struct {
	AccountName string
	Currency    string
	Exchange    string
	Ticker      string
	Date        time.Time
	EndPrice    *float64 // end-of-day share price in the native currency
	OneMonth    *float64 // trailing 1-month return
	ThreeMonth  *float64 // trailing 3-month return
	OneYear     *float64 // trailing 1-year return
	YTD         *float64 // return since Jan 1 of Date's year
	UsdEuro     *float64 // USD/EURO rate on Date
	UsdInr      *float64 // USD/INR rate on Date
	USDEnd      *float64 // USD-normalized end price
	USDBeg      *float64 // USD end price of the previous calendar day
}

// AverageRow is the cross-sectional daily mean of the four return metrics
// across all securities reporting a non-nil value on that date. Derived,
// recomputed fully on each run.
type AverageRow struct {
	Date       time.Time
	OneMonth   *float64
	ThreeMonth *float64
	OneYear    *float64
	YTD        *float64
}
