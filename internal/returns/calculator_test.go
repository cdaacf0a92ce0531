package returns

import (
	"errors"
	"math"
	"testing"
	"time"

	"indexpulse/internal/domain/models"
	"indexpulse/internal/series"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fp(v float64) *float64 { return &v }

// denseTable builds a rate table with constant per-pair rates from the first
// day onward; a nil rate leaves that pair's column all-nil (simulated fetch
// failure for the pair).
func denseTable(start time.Time, days int, eur, inr *float64) *models.RateTable {
	t := &models.RateTable{
		Start: start,
		Days:  days,
		Pairs: []string{"USD/EURO", "USD/INR"},
		Rates: map[string][]*float64{
			"USD/EURO": make([]*float64, days),
			"USD/INR":  make([]*float64, days),
		},
	}
	for i := 0; i < days; i++ {
		if eur != nil {
			t.Rates["USD/EURO"][i] = eur
		}
		if inr != nil {
			t.Rates["USD/INR"][i] = inr
		}
	}
	return t
}

// flatObs emits one observation per day over [from, to] at a constant price.
func flatObs(from, to time.Time, price float64) []models.PriceObservation {
	var obs []models.PriceObservation
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		obs = append(obs, models.PriceObservation{Date: d, Close: price})
	}
	return obs
}

func TestCompute_EmptyObservations(t *testing.T) {
	calc := NewCalculator()
	table := denseTable(day(2024, time.January, 1), 10, fp(1.1), fp(83))
	if _, err := calc.Compute(models.Security{Ticker: "X"}, nil, table); !errors.Is(err, ErrNoPrices) {
		t.Fatalf("expected ErrNoPrices, got %v", err)
	}
}

func TestCompute_USDIdentity(t *testing.T) {
	calc := NewCalculator()
	start := day(2024, time.January, 1)
	table := denseTable(start, 31, fp(1.1), fp(83))
	sec := models.Security{Name: "Acme Corp", Ticker: "ACME", Currency: "USD", Exchange: "NYSE"}

	rows, err := calc.Compute(sec, flatObs(start, day(2024, time.January, 31), 123.456), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 31 {
		t.Fatalf("expected 31 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.USDEnd == nil || *r.USDEnd != series.Round2(123.456) {
			t.Fatalf("%s: USDEnd = %v, want %v", r.Date.Format("2006-01-02"), r.USDEnd, series.Round2(123.456))
		}
		if r.AccountName != "Acme Corp" || r.Exchange != "NYSE" {
			t.Fatalf("identity fields not carried: %+v", r)
		}
	}
	// USD Beg. Price is the previous calendar day's USD End Price.
	if rows[0].USDBeg != nil {
		t.Fatalf("first row should have nil USDBeg")
	}
	if rows[5].USDBeg == nil || *rows[5].USDBeg != *rows[4].USDEnd {
		t.Fatalf("USDBeg not shifted: %v vs %v", rows[5].USDBeg, rows[4].USDEnd)
	}
}

func TestCompute_INRConversion(t *testing.T) {
	calc := NewCalculator()
	start := day(2024, time.January, 1)
	table := denseTable(start, 10, fp(1.1), fp(83.0))
	sec := models.Security{Ticker: "INFY", Currency: "INR"}

	rows, err := calc.Compute(sec, flatObs(start, day(2024, time.January, 10), 1660.0), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := series.Round2(1660.0 / 83.0)
	for _, r := range rows {
		if r.USDEnd == nil || *r.USDEnd != want {
			t.Fatalf("%s: USDEnd = %v, want %v", r.Date.Format("2006-01-02"), r.USDEnd, want)
		}
	}
}

func TestCompute_NonINRUsesEuroPair(t *testing.T) {
	// The two-bucket policy: any currency that is not literally "INR" or
	// "USD" converts through USD/EURO.
	calc := NewCalculator()
	start := day(2024, time.January, 1)
	table := denseTable(start, 5, fp(1.25), fp(83.0))
	sec := models.Security{Ticker: "SAP", Currency: "GBP"}

	rows, err := calc.Compute(sec, flatObs(start, day(2024, time.January, 5), 100.0), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := series.Round2(100.0 / 1.25)
	for _, r := range rows {
		if r.USDEnd == nil || *r.USDEnd != want {
			t.Fatalf("USDEnd = %v, want %v", r.USDEnd, want)
		}
	}
}

func TestCompute_MissingPairPropagatesNil(t *testing.T) {
	// EUR-denominated security against an all-nil USD/EURO column: no USD
	// prices, hence no metrics, for this security only.
	calc := NewCalculator()
	start := day(2023, time.January, 1)
	table := denseTable(start, 400, nil, fp(83.0))
	sec := models.Security{Ticker: "AIR", Currency: "EUR"}

	rows, err := calc.Compute(sec, flatObs(start, start.AddDate(0, 0, 399), 50.0), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range rows {
		if r.USDEnd != nil || r.OneMonth != nil || r.ThreeMonth != nil || r.OneYear != nil || r.YTD != nil {
			t.Fatalf("%s: expected all-nil USD metrics, got %+v", r.Date.Format("2006-01-02"), r)
		}
		if r.EndPrice == nil || *r.EndPrice != 50.0 {
			t.Fatalf("raw price should survive: %+v", r)
		}
	}
}

func TestCompute_YTD(t *testing.T) {
	calc := NewCalculator()
	start := day(2024, time.January, 1)
	table := denseTable(start, 60, fp(1.1), fp(83))
	sec := models.Security{Ticker: "ACME", Currency: "USD"}

	// 100 on Jan 1, 120 from Feb 1 on.
	obs := append(flatObs(start, day(2024, time.January, 31), 100),
		flatObs(day(2024, time.February, 1), day(2024, time.February, 29), 120)...)
	rows, err := calc.Compute(sec, obs, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Jan 1 itself: YTD = 0.
	if rows[0].YTD == nil || *rows[0].YTD != 0 {
		t.Fatalf("Jan 1 YTD = %v, want 0", rows[0].YTD)
	}
	// Feb 10 (index 40): 120/100 - 1 = 0.20.
	if got := rows[40].YTD; got == nil || *got != 0.20 {
		t.Fatalf("Feb 10 YTD = %v, want 0.20", got)
	}
}

func TestCompute_YTDNilWhenJan1Absent(t *testing.T) {
	// Table starts Dec 1: December dates have no Jan 1 row for their year.
	calc := NewCalculator()
	start := day(2023, time.December, 1)
	table := denseTable(start, 62, fp(1.1), fp(83))
	sec := models.Security{Ticker: "ACME", Currency: "USD"}

	rows, err := calc.Compute(sec, flatObs(start, start.AddDate(0, 0, 61), 100), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 31; i++ { // all of December 2023
		if rows[i].YTD != nil {
			t.Fatalf("%s: YTD should be nil before a Jan 1 row exists", rows[i].Date.Format("2006-01-02"))
		}
	}
	// Jan 1 2024 is row 31; from there YTD resolves again.
	if rows[31].YTD == nil || *rows[31].YTD != 0 {
		t.Fatalf("Jan 1 2024 YTD = %v, want 0", rows[31].YTD)
	}
}

func TestCompute_TrailingWindows_FlatThenJump(t *testing.T) {
	// Flat 100 for 400 days, 110 on day 401: the 1-month return on day 401
	// is 0.10 because the lookback lands in the flat period.
	calc := NewCalculator()
	start := day(2023, time.January, 1)
	table := denseTable(start, 401, fp(1.1), fp(83))
	sec := models.Security{Ticker: "ACME", Currency: "USD"}

	jumpDay := start.AddDate(0, 0, 400)
	obs := append(flatObs(start, start.AddDate(0, 0, 399), 100),
		models.PriceObservation{Date: jumpDay, Close: 110})
	rows, err := calc.Compute(sec, obs, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := rows[len(rows)-1]
	if !last.Date.Equal(jumpDay) {
		t.Fatalf("last row date = %v", last.Date)
	}
	for _, m := range []*float64{last.OneMonth, last.ThreeMonth, last.OneYear} {
		if m == nil || *m != 0.10 {
			t.Fatalf("trailing return = %v, want 0.10", m)
		}
	}
	// A mid-flat day: every resolvable window is 0.
	mid := rows[200]
	if mid.OneMonth == nil || *mid.OneMonth != 0 {
		t.Fatalf("flat 1-month = %v, want 0", mid.OneMonth)
	}
}

func TestCompute_TrailingWindowOutOfRange(t *testing.T) {
	// Early dates whose lookback precedes the table have nil windows.
	calc := NewCalculator()
	start := day(2024, time.January, 1)
	table := denseTable(start, 45, fp(1.1), fp(83))
	sec := models.Security{Ticker: "ACME", Currency: "USD"}

	rows, err := calc.Compute(sec, flatObs(start, start.AddDate(0, 0, 44), 100), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Jan 15: 1 month back is Dec 15, before the table.
	if rows[14].OneMonth != nil {
		t.Fatalf("expected nil 1-month for lookback before table start")
	}
	// Feb 1: 1 month back is Jan 1, in range and flat.
	if rows[31].OneMonth == nil || *rows[31].OneMonth != 0 {
		t.Fatalf("Feb 1 1-month = %v, want 0", rows[31].OneMonth)
	}
	// 3-month and 1-year never resolve on a 45-day table.
	for _, r := range rows {
		if r.ThreeMonth != nil || r.OneYear != nil {
			t.Fatalf("%s: expected nil long windows", r.Date.Format("2006-01-02"))
		}
	}
}

func TestCompute_ConstantGrowthExactness(t *testing.T) {
	// Daily growth g: the 1-month return on D must equal
	// price[D]/price[D-1mo] - 1 computed from the same rounded USD series.
	calc := NewCalculator()
	start := day(2023, time.June, 1)
	days := 120
	table := denseTable(start, days, fp(1.1), fp(83))
	sec := models.Security{Ticker: "GROW", Currency: "USD"}

	g := 1.001
	var obs []models.PriceObservation
	for i := 0; i < days; i++ {
		obs = append(obs, models.PriceObservation{
			Date:  start.AddDate(0, 0, i),
			Close: 100 * math.Pow(g, float64(i)),
		})
	}
	rows, err := calc.Compute(sec, obs, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d := day(2023, time.September, 15)
	var cur, past models.MetricRow
	for _, r := range rows {
		if r.Date.Equal(d) {
			cur = r
		}
		if r.Date.Equal(series.AddMonths(d, -1)) {
			past = r
		}
	}
	want := series.Round2(*cur.USDEnd / *past.USDEnd - 1)
	if cur.OneMonth == nil || *cur.OneMonth != want {
		t.Fatalf("1-month = %v, want %v", cur.OneMonth, want)
	}
}

func TestCompute_LeadingGapBeforeInception(t *testing.T) {
	calc := NewCalculator()
	start := day(2024, time.January, 1)
	table := denseTable(start, 20, fp(1.1), fp(83))
	sec := models.Security{Name: "Late Corp", Ticker: "LATE", Currency: "USD"}

	rows, err := calc.Compute(sec, flatObs(day(2024, time.January, 11), day(2024, time.January, 20), 10), table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		if rows[i].EndPrice != nil || rows[i].USDEnd != nil {
			t.Fatalf("day %d: expected nil prices before inception", i)
		}
		if rows[i].AccountName != "Late Corp" {
			t.Fatalf("day %d: identity fields must still be present", i)
		}
	}
	if rows[10].EndPrice == nil || *rows[10].EndPrice != 10 {
		t.Fatalf("inception day price missing")
	}
}
