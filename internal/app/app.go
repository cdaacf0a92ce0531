package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"indexpulse/config"
	"indexpulse/internal/api"
	"indexpulse/internal/batch"
	"indexpulse/internal/service"
	"indexpulse/internal/storage"
)

// storeOpener is an indirection used by InitializeApp; overridden in tests to
// serve artifacts from a stub reader instead of the filesystem.
var storeOpener = func(cfg config.Config) service.ArtifactReader {
	return storage.NewArtifactStore(cfg.Batch.DataDir)
}

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Opens the artifact store over the configured data directory.
//   - Initializes the service layer over the batch's output workbooks.
//   - Creates the HTTP handler layer to handle requests.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources.
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	if len(cfg.Batch.StartYears) == 0 {
		return nil, nil, fmt.Errorf("no start years configured")
	}

	// The API serves the first configured run's artifact, mirroring the
	// batch's choice of which run feeds the averages workbook.
	metricsFile := batch.ArtifactName(cfg.Batch.StartYears[0])

	// Open the artifact store (indirection for unit testing)
	reader := storeOpener(cfg)

	// Initialize service layer (business logic)
	svc := service.NewMetricsService(reader, metricsFile, batch.AveragesArtifact)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(svc)

	// Setup Gin router with routes
	router := api.NewRouter(handler)

	// Register health and readiness probes
	healthHandler := api.NewHealthHandler(svc.Ready)
	healthHandler.Register(router)

	// No long-lived resources to release; kept for symmetry with callers.
	cleanup := func() {}

	return router, cleanup, nil
}
