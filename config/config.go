package config

import (
	"log"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system,
// such as server settings, the market-data provider, and batch parameters.
//
// Example YAML/ENV equivalent:
//
//	SERVER_PORT=8080
//	PROVIDER_BASE_URL=https://query1.finance.yahoo.com
//	PROVIDER_TIMEOUT_SECONDS=30
//	DATA_DIR=./data
//	SECURITIES_FILE=securities.xlsx
//	START_YEARS=2023,2014
type Config struct {
	Server   ServerConfig   // HTTP server configuration (api mode)
	Provider ProviderConfig // Market-data provider settings
	Batch    BatchConfig    // Batch run parameters
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// ProviderConfig defines how to reach the historical market-data provider.
//
// Fields:
//   - BaseURL: scheme+host of the provider's chart endpoint.
//   - TimeoutSeconds: per-request HTTP timeout.
type ProviderConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// BatchConfig defines the parameters of one batch invocation.
//
// Fields:
//   - DataDir: directory holding the security list and the output artifacts.
//   - SecuritiesFile: filename of the security list workbook inside DataDir.
//   - StartYears: one full pipeline run per year; the first listed year is
//     the run the averages artifact derives from.
//   - CurrencyPairs: tracked pair name → provider symbol. The pair set is an
//     explicit configuration value consumed by the FX aggregator and the
//     return calculator, never read from ambient process state.
type BatchConfig struct {
	DataDir        string
	SecuritiesFile string
	StartYears     []int
	CurrencyPairs  map[string]string
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
// All services should import this package and read from AppConfig instead of
// reloading environment variables directly.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Behavior:
//   - Sets defaults for all required fields.
//   - Reads environment variables automatically with viper.AutomaticEnv().
//   - Parses START_YEARS into an ordered int slice.
//   - Calls validateConfig() to ensure required fields are present.
//
// Fatal exit:
//   - If required variables are missing or malformed, validateConfig() will
//     terminate the app with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("PROVIDER_BASE_URL", "https://query1.finance.yahoo.com")
	viper.SetDefault("PROVIDER_TIMEOUT_SECONDS", 30)

	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("SECURITIES_FILE", "securities.xlsx")
	viper.SetDefault("START_YEARS", "2023,2014")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	// Populate global config instance
	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Provider: ProviderConfig{
			BaseURL:        viper.GetString("PROVIDER_BASE_URL"),
			TimeoutSeconds: viper.GetInt("PROVIDER_TIMEOUT_SECONDS"),
		},
		Batch: BatchConfig{
			DataDir:        viper.GetString("DATA_DIR"),
			SecuritiesFile: viper.GetString("SECURITIES_FILE"),
			StartYears:     parseYears(viper.GetString("START_YEARS")),
			CurrencyPairs: map[string]string{
				"USD/EURO": "EURUSD=X",
				"USD/INR":  "INR=X",
			},
		},
	}

	// Validate critical fields
	validateConfig()
}

// parseYears parses a comma-separated list of years ("2023,2014").
// Malformed entries are dropped; validateConfig catches an empty result.
func parseYears(s string) []int {
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		years = append(years, y)
	}
	return years
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// This avoids unexpected runtime failures due to incomplete configuration.
//
// Behavior:
//   - Checks each critical field of AppConfig.
//   - Collects missing ones in a slice.
//   - If any are missing, logs them and terminates the app with log.Fatalf().
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if AppConfig.Provider.BaseURL == "" {
		missing = append(missing, "PROVIDER_BASE_URL")
	}
	if AppConfig.Provider.TimeoutSeconds <= 0 {
		missing = append(missing, "PROVIDER_TIMEOUT_SECONDS")
	}
	if AppConfig.Batch.DataDir == "" {
		missing = append(missing, "DATA_DIR")
	}
	if AppConfig.Batch.SecuritiesFile == "" {
		missing = append(missing, "SECURITIES_FILE")
	}
	if len(AppConfig.Batch.StartYears) == 0 {
		missing = append(missing, "START_YEARS")
	}

	if len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}
