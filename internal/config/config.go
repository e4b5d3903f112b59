// Package config loads service configuration from environment variables and
// an optional .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"reconciliation-service/internal/domain"
)

// Config holds the recognized service options. Threshold and start row are
// the defaults applied when a request does not override them.
type Config struct {
	Port              string
	FuzzyThreshold    int
	StartRow          int
	MaxColumnsToCheck int
}

// Load reads configuration, trying a .env file in the working directory
// first (missing file is fine) and validating ranges before the service
// starts; an out-of-range option is fatal up front, never mid-request.
func Load() (*Config, error) {
	_ = godotenv.Load()

	threshold, err := intEnv("FUZZY_MATCH_THRESHOLD", 80)
	if err != nil {
		return nil, err
	}
	startRow, err := intEnv("START_ROW", 2)
	if err != nil {
		return nil, err
	}
	maxColumns, err := intEnv("MAX_COLUMNS_TO_CHECK", 20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8084"),
		FuzzyThreshold:    threshold,
		StartRow:          startRow,
		MaxColumnsToCheck: maxColumns,
	}

	if cfg.FuzzyThreshold < 0 || cfg.FuzzyThreshold > 100 {
		return nil, &domain.ConfigurationError{
			Field:  "FUZZY_MATCH_THRESHOLD",
			Value:  strconv.Itoa(cfg.FuzzyThreshold),
			Reason: "must be between 0 and 100",
		}
	}
	if cfg.StartRow < 1 {
		return nil, &domain.ConfigurationError{
			Field:  "START_ROW",
			Value:  strconv.Itoa(cfg.StartRow),
			Reason: "must be at least 1",
		}
	}
	if cfg.MaxColumnsToCheck < 1 {
		return nil, &domain.ConfigurationError{
			Field:  "MAX_COLUMNS_TO_CHECK",
			Value:  strconv.Itoa(cfg.MaxColumnsToCheck),
			Reason: "must be at least 1",
		}
	}
	return cfg, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &domain.ConfigurationError{Field: key, Value: v, Reason: "must be an integer"}
	}
	return n, nil
}
