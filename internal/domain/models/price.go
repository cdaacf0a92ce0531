package models

import "time"

// PriceObservation is a single raw data point from the market-data provider:
// the adjusted closing price of one identifier on one actual trading day.
// Observations are immutable once fetched; dates are UTC midnight.
type PriceObservation struct {
	Date  time.Time
	Close float64
}
