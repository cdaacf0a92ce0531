package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"indexpulse/internal/average"
	"indexpulse/internal/domain/models"
	"indexpulse/internal/fx"
	"indexpulse/internal/logger"
	"indexpulse/internal/marketdata"
	"indexpulse/internal/returns"
	"indexpulse/internal/series"
	"indexpulse/internal/storage"
)

const (
	// The batch fetches ~13 months of history before the nominal start so
	// 1-year lookbacks resolve on the earliest reported dates.
	seedMonths = 13

	maxParallelLimit = 8

	// AveragesArtifact is the filename of the cross-sectional averages output.
	AveragesArtifact = "average_stock_metrics.xlsx"
)

// FailureKind classifies an isolated per-security failure.
type FailureKind string

const (
	FailureFetch   FailureKind = "fetch"   // provider call failed or returned empty
	FailureCompute FailureKind = "compute" // metric computation failed
	FailureIO      FailureKind = "io"      // artifact write failed
)

// Failure records one isolated failure inside a run.
type Failure struct {
	Ticker string
	Kind   FailureKind
	Err    error
}

// Report summarizes one per-year run. The batch driver aggregates failures
// here and decides fatal-vs-isolated, instead of swallowing at call sites.
type Report struct {
	StartYear  int
	Artifact   string
	Securities int
	Rows       int
	Failures   []Failure
}

// Runner executes the full pipeline for one batch invocation: build the
// shared currency table, compute every security's metric series, write the
// per-year artifacts, and derive the averages artifact.
type Runner struct {
	provider marketdata.HistoryProvider
	store    *storage.ArtifactStore
	calc     *returns.Calculator
	pairs    map[string]string
	parallel int

	// now is injectable so tests can pin the batch end date.
	now func() time.Time
}

// NewRunner creates a Runner.
//
// Parameters:
//   - provider: historical market-data source for tickers and pairs.
//   - store: artifact store for inputs and outputs.
//   - pairs: tracked currency pairs (pair name → provider symbol).
//   - parallel: concurrent per-security computations; 0 = auto
//     (min(NumCPU, 8)), clamped to 1..8 otherwise.
func NewRunner(provider marketdata.HistoryProvider, store *storage.ArtifactStore, pairs map[string]string, parallel int) *Runner {
	return &Runner{
		provider: provider,
		store:    store,
		calc:     returns.NewCalculator(),
		pairs:    pairs,
		parallel: parallel,
		now:      time.Now,
	}
}

// ArtifactName returns the metrics artifact filename for a start year.
func ArtifactName(startYear int) string {
	return fmt.Sprintf("stock_and_currency_data_since_%d.xlsx", startYear)
}

// Run executes one per-year pipeline pass.
//
// Behavior:
//   - Fetches history over [Jan 1 of startYear − 13 months, today].
//   - Builds the shared currency table first; an empty table is fatal for
//     the run (no shared calendar to align securities to).
//   - Computes each security's series under a bounded errgroup; workers
//     write results by input position so the combined output keeps the
//     security-list order regardless of completion order.
//   - A per-security fetch or compute failure is recorded in the report and
//     does not cancel sibling work.
//   - Rows before Jan 1 of startYear are excluded from the artifact; the
//     earlier history exists solely to seed lookback windows.
func (r *Runner) Run(ctx context.Context, securities []models.Security, startYear int) (*Report, error) {
	actualStart := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	historicalStart := series.AddMonths(actualStart, -seedMonths)
	end := series.MidnightUTC(r.now())

	report := &Report{
		StartYear:  startYear,
		Artifact:   ArtifactName(startYear),
		Securities: len(securities),
	}
	log := logger.Component("batch")

	log.Info().
		Int("start_year", startYear).
		Str("historical_start", historicalStart.Format("2006-01-02")).
		Str("end", end.Format("2006-01-02")).
		Int("securities", len(securities)).
		Msg("run start")

	table, err := fx.NewAggregator(r.provider, r.pairs).BuildRateTable(ctx, historicalStart, end)
	if err != nil {
		return report, fmt.Errorf("build currency table: %w", err)
	}

	maxParallel := r.maxParallel()
	log.Info().Int("max_parallel", maxParallel).Msg("run configured")

	results := make([][]models.MetricRow, len(securities))
	failures := make([]*Failure, len(securities))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for i, sec := range securities {
		idx := i
		s := sec
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()

			obs, err := r.provider.DailyHistory(gctx, s.Ticker, historicalStart, end)
			if err != nil {
				log.Error().Str("ticker", s.Ticker).Err(err).Msg("price fetch failed")
				failures[idx] = &Failure{Ticker: s.Ticker, Kind: FailureFetch, Err: err}
				return nil
			}
			if len(obs) == 0 {
				log.Warn().Str("ticker", s.Ticker).Msg("price history empty")
				failures[idx] = &Failure{Ticker: s.Ticker, Kind: FailureFetch, Err: returns.ErrNoPrices}
				return nil
			}

			rows, err := r.calc.Compute(s, obs, table)
			if err != nil {
				log.Error().Str("ticker", s.Ticker).Err(err).Msg("metric computation failed")
				failures[idx] = &Failure{Ticker: s.Ticker, Kind: FailureCompute, Err: err}
				return nil
			}

			results[idx] = filterFrom(rows, actualStart)
			log.Info().
				Str("ticker", s.Ticker).
				Int("observations", len(obs)).
				Int("rows", len(results[idx])).
				Dur("elapsed", time.Since(start)).
				Msg("security done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Workers never return errors themselves; this is a cancelled context.
		return report, err
	}

	var combined []models.MetricRow
	for i := range results {
		combined = append(combined, results[i]...)
		if failures[i] != nil {
			report.Failures = append(report.Failures, *failures[i])
		}
	}
	report.Rows = len(combined)

	if err := r.store.WriteMetrics(report.Artifact, combined); err != nil {
		report.Failures = append(report.Failures, Failure{Kind: FailureIO, Err: err})
		return report, fmt.Errorf("write artifact %s: %w", report.Artifact, err)
	}

	log.Info().
		Int("start_year", startYear).
		Str("artifact", report.Artifact).
		Int("rows", report.Rows).
		Int("failed", len(report.Failures)).
		Msg("run done")
	return report, nil
}

// RunAll executes one run per configured start year, then derives the
// averages artifact from the first year's saved output.
//
// Error policy:
//   - A failed year is logged and does not stop the remaining years.
//   - Returns an error only when every year failed (nothing was produced)
//     or the driver could not even start (no securities).
func (r *Runner) RunAll(ctx context.Context, securities []models.Security, startYears []int) error {
	if len(securities) == 0 {
		return storage.ErrNoSecurities
	}
	log := logger.Component("batch")

	succeeded := 0
	for _, year := range startYears {
		if _, err := r.Run(ctx, securities, year); err != nil {
			log.Error().Int("start_year", year).Err(err).Msg("run failed")
			continue
		}
		succeeded++
	}
	if succeeded == 0 {
		return fmt.Errorf("all %d runs failed", len(startYears))
	}

	if err := r.writeAverages(startYears[0]); err != nil {
		log.Error().Err(err).Msg("averages pass failed")
	}
	return nil
}

// writeAverages is the second pass: read the most-recent run's artifact back
// from disk, reduce it date-wise, and write the averages artifact.
func (r *Runner) writeAverages(startYear int) error {
	log := logger.Component("batch")
	rows, err := r.store.ReadMetrics(ArtifactName(startYear))
	if err != nil {
		return fmt.Errorf("read %s: %w", ArtifactName(startYear), err)
	}
	averages := average.Average(rows)
	if err := r.store.WriteAverages(AveragesArtifact, averages); err != nil {
		return fmt.Errorf("write %s: %w", AveragesArtifact, err)
	}
	log.Info().Str("artifact", AveragesArtifact).Int("rows", len(averages)).Msg("averages done")
	return nil
}

func (r *Runner) maxParallel() int {
	p := r.parallel
	if p <= 0 {
		p = runtime.NumCPU()
	}
	if p > maxParallelLimit {
		p = maxParallelLimit
	}
	if p < 1 {
		p = 1
	}
	return p
}

// filterFrom drops rows dated before start.
func filterFrom(rows []models.MetricRow, start time.Time) []models.MetricRow {
	out := rows[:0:0]
	for _, row := range rows {
		if !row.Date.Before(start) {
			out = append(out, row)
		}
	}
	return out
}
