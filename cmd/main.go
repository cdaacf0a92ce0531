package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"indexpulse/config"
	"indexpulse/internal/app"
	"indexpulse/internal/batch"
	"indexpulse/internal/logger"
	"indexpulse/internal/marketdata"
	"indexpulse/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the indexpulse application.
//
// Modes (selected via --mode flag):
//   - batch: Fetches price and FX history, computes trailing returns, and
//     writes the spreadsheet artifacts for each configured start year.
//   - api:   Starts the REST API exposing the computed metrics.
//
// Flags:
//   - --mode:     Execution mode ("batch" or "api"). Default: "batch".
//   - --parallel: How many securities to process concurrently (0=auto up to CPU, max 8).
//   - --port:     Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "batch", "Mode: batch or api")
	parallel := flag.Int("parallel", 0, "How many securities to process concurrently (0=auto up to CPU, max 8)")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "batch":
		logger.L().Info().Msg("running batch")
		cfg := config.AppConfig

		store := storage.NewArtifactStore(cfg.Batch.DataDir)
		securities, err := store.ReadSecurities(cfg.Batch.SecuritiesFile)
		if err != nil {
			logger.L().Fatal().Err(err).Str("file", cfg.Batch.SecuritiesFile).Msg("failed to read security list")
		}

		provider := marketdata.NewClient(cfg.Provider.BaseURL, time.Duration(cfg.Provider.TimeoutSeconds)*time.Second)
		runner := batch.NewRunner(provider, store, cfg.Batch.CurrencyPairs, *parallel)

		if err := runner.RunAll(ctx, securities, cfg.Batch.StartYears); err != nil {
			logger.L().Fatal().Err(err).Msg("batch failed")
		}
		logger.L().Info().Msg("batch completed successfully")

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
