package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"indexpulse/config"
	"indexpulse/internal/domain/models"
	"indexpulse/internal/service"
)

type stubReader struct {
	metrics  []models.MetricRow
	averages []models.AverageRow
	err      error
}

func (s *stubReader) ReadMetrics(string) ([]models.MetricRow, error) {
	return s.metrics, s.err
}

func (s *stubReader) ReadAverages(string) ([]models.AverageRow, error) {
	return s.averages, s.err
}

func withStubReader(t *testing.T, reader service.ArtifactReader) {
	t.Helper()
	oldOpener := storeOpener
	oldCfg := config.AppConfig
	storeOpener = func(config.Config) service.ArtifactReader { return reader }
	config.AppConfig = config.Config{
		Batch: config.BatchConfig{
			DataDir:    t.TempDir(),
			StartYears: []int{2023, 2014},
		},
	}
	t.Cleanup(func() {
		storeOpener = oldOpener
		config.AppConfig = oldCfg
	})
}

func TestInitializeApp_NoStartYears(t *testing.T) {
	old := config.AppConfig
	t.Cleanup(func() { config.AppConfig = old })
	config.AppConfig = config.Config{}

	r, cleanup, err := InitializeApp()
	if err == nil || r != nil || cleanup != nil {
		if cleanup != nil {
			cleanup()
		}
		t.Fatalf("expected error from InitializeApp without start years")
	}
}

func TestInitializeApp_HappyPath(t *testing.T) {
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 100.0
	withStubReader(t, &stubReader{metrics: []models.MetricRow{
		{Ticker: "ACME", Date: day, EndPrice: &price},
	}})

	router, cleanup, err := InitializeApp()
	if err != nil || router == nil || cleanup == nil {
		t.Fatalf("InitializeApp failed: err=%v", err)
	}

	// Hit health endpoints
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", w.Code)
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	router.ServeHTTP(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("readyz status=%d", w2.Code)
	}

	// Metrics route is wired through the stub reader
	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodGet, "/api/v1/metrics?ticker=ACME", nil)
	router.ServeHTTP(w3, req3)
	if w3.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", w3.Code)
	}

	// Call cleanup and ensure it doesn't panic
	cleanup()
}

func TestInitializeApp_NotReadyBeforeBatch(t *testing.T) {
	withStubReader(t, &stubReader{err: errors.New("artifact missing")})

	router, cleanup, err := InitializeApp()
	if err != nil {
		t.Fatalf("InitializeApp failed: %v", err)
	}
	defer cleanup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz status=%d, want 503", w.Code)
	}
}
