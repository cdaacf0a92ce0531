package service

import (
	"context"
	"strings"

	"indexpulse/internal/domain/models"
)

// ArtifactReader is the slice of the storage layer the service needs:
// reading previously written metrics and averages workbooks by filename.
type ArtifactReader interface {
	ReadMetrics(filename string) ([]models.MetricRow, error)
	ReadAverages(filename string) ([]models.AverageRow, error)
}

// MetricsService defines read access to the computed return metrics.
// This decouples HTTP handlers from artifact storage.
type MetricsService interface {
	GetSecurityMetrics(ctx context.Context, ticker string) ([]models.MetricRow, error)
	GetAverages(ctx context.Context) ([]models.AverageRow, error)
	Ready() error
}

type metricsService struct {
	reader       ArtifactReader
	metricsFile  string
	averagesFile string
}

// NewMetricsService constructs a MetricsService that serves rows from the
// given metrics and averages artifacts.
//
// Parameters:
//   - reader (ArtifactReader): Storage dependency used to read the workbooks.
//   - metricsFile (string): Filename of the per-security metrics artifact.
//   - averagesFile (string): Filename of the daily averages artifact.
//
// Returns:
//   - MetricsService: A service ready to be injected into the HTTP handler.
func NewMetricsService(reader ArtifactReader, metricsFile, averagesFile string) MetricsService {
	return &metricsService{
		reader:       reader,
		metricsFile:  metricsFile,
		averagesFile: averagesFile,
	}
}

// GetSecurityMetrics returns all rows for the given ticker, in the artifact's
// date order. A nil slice with nil error means the ticker has no rows.
//
// The artifact is re-read on every call so that a batch rerun is picked up
// without restarting the API.
func (s *metricsService) GetSecurityMetrics(ctx context.Context, ticker string) ([]models.MetricRow, error) {
	rows, err := s.reader.ReadMetrics(s.metricsFile)
	if err != nil {
		return nil, err
	}

	var out []models.MetricRow
	for _, row := range rows {
		if strings.EqualFold(row.Ticker, ticker) {
			out = append(out, row)
		}
	}
	return out, nil
}

// GetAverages returns the daily cross-sectional averages, in date order.
func (s *metricsService) GetAverages(ctx context.Context) ([]models.AverageRow, error) {
	return s.reader.ReadAverages(s.averagesFile)
}

// Ready reports whether the metrics artifact is present and parseable.
// Used by the readiness probe so the API only advertises ready once a batch
// run has produced output.
func (s *metricsService) Ready() error {
	_, err := s.reader.ReadMetrics(s.metricsFile)
	return err
}
