package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"indexpulse/internal/domain/models"
	"indexpulse/internal/series"
)

// HistoryProvider fetches raw daily price observations for one identifier
// (a ticker or a currency-pair symbol) over an inclusive date range.
// Implementations may return an empty sequence or fail per-identifier;
// callers own the isolation policy.
type HistoryProvider interface {
	DailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceObservation, error)
}

// Client is a HistoryProvider backed by a Yahoo-Finance-style chart API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a provider client.
//
// Parameters:
//   - baseURL: scheme+host of the chart endpoint (no trailing slash needed).
//   - timeout: per-request HTTP timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// chartResponse is the provider's chart payload. Price arrays use *float64
// because the provider emits JSON nulls for days it has no value for.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Adjclose []struct {
					Adjclose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyHistory fetches the adjusted daily closes for symbol in [from, to].
//
// Behavior:
//   - Queries /v8/finance/chart/{symbol} with period1/period2 unix bounds and
//     a 1d interval.
//   - Prefers the adjusted close series, falling back to the raw close.
//   - Skips null price entries; timestamps collapse to UTC midnight dates.
//   - Returns an empty slice when the provider has no rows for the range.
func (c *Client) DailyHistory(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceObservation, error) {
	// period2 is exclusive upstream, so push it one day past the range end.
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		c.baseURL,
		url.PathEscape(symbol),
		series.MidnightUTC(from).Unix(),
		series.MidnightUTC(to).AddDate(0, 0, 1).Unix(),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", symbol, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response for %s: %w", symbol, err)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("decode response for %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("provider error for %s: %s (%s)", symbol, chart.Chart.Error.Description, chart.Chart.Error.Code)
	}
	if len(chart.Chart.Result) == 0 {
		return []models.PriceObservation{}, nil
	}

	result := chart.Chart.Result[0]
	closes := c.pickCloses(result.Indicators.Adjclose, result.Indicators.Quote)

	obs := make([]models.PriceObservation, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		obs = append(obs, models.PriceObservation{
			Date:  series.MidnightUTC(time.Unix(ts, 0)),
			Close: *closes[i],
		})
	}
	return obs, nil
}

// pickCloses prefers the adjusted close series when present and non-empty.
func (c *Client) pickCloses(
	adj []struct {
		Adjclose []*float64 `json:"adjclose"`
	},
	quote []struct {
		Close []*float64 `json:"close"`
	},
) []*float64 {
	if len(adj) > 0 && len(adj[0].Adjclose) > 0 {
		return adj[0].Adjclose
	}
	if len(quote) > 0 {
		return quote[0].Close
	}
	return nil
}
