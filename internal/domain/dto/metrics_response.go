package dto

// MetricRowResponse is one (security, date) row as returned by the
// GET /api/v1/metrics endpoint.
//
// Fields match the API contract and may differ from internal domain models.
// Optional metrics serialize as JSON null when absent.
type MetricRowResponse struct {
	AccountName string   `json:"account_name" example:"Acme Corp"`
	Currency    string   `json:"currency" example:"USD"`
	Exchange    string   `json:"exchange" example:"NYSE"`
	Ticker      string   `json:"ticker" example:"ACME"`
	Date        string   `json:"date" example:"2024-03-01"`
	EndPrice    *float64 `json:"end_share_price" example:"100.50"`
	OneMonth    *float64 `json:"one_month" example:"0.10"`
	ThreeMonth  *float64 `json:"three_month" example:"0.15"`
	OneYear     *float64 `json:"one_year" example:"0.30"`
	YTD         *float64 `json:"ytd" example:"0.05"`
	UsdEuro     *float64 `json:"usd_euro" example:"1.10"`
	UsdInr      *float64 `json:"usd_inr" example:"83.20"`
	USDEnd      *float64 `json:"usd_end_price" example:"100.50"`
	USDBeg      *float64 `json:"usd_beg_price" example:"99.80"`
}

// MetricsResponse wraps one security's rows.
type MetricsResponse struct {
	Ticker string              `json:"ticker" example:"ACME"`
	Rows   []MetricRowResponse `json:"rows"`
}

// AverageRowResponse is one row of the GET /api/v1/averages endpoint: the
// cross-sectional daily mean of the four return metrics.
type AverageRowResponse struct {
	Date       string   `json:"date" example:"2024-03-01"`
	OneMonth   *float64 `json:"one_month" example:"0.10"`
	ThreeMonth *float64 `json:"three_month" example:"0.15"`
	OneYear    *float64 `json:"one_year" example:"0.30"`
	YTD        *float64 `json:"ytd" example:"0.05"`
}
