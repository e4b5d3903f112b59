package config

import (
	"errors"
	"os"
	"testing"

	"reconciliation-service/internal/domain"
)

func withEnv(t *testing.T, key, value string) {
	t.Helper()
	old := os.Getenv(key)
	os.Setenv(key, value)
	t.Cleanup(func() { os.Setenv(key, old) })
}

// TestLoad_Defaults verifies the documented defaults.
func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "FUZZY_MATCH_THRESHOLD", "START_ROW", "MAX_COLUMNS_TO_CHECK"} {
		withEnv(t, key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Port != "8084" {
		t.Errorf("Port = %s, want 8084", cfg.Port)
	}
	if cfg.FuzzyThreshold != 80 {
		t.Errorf("FuzzyThreshold = %d, want 80", cfg.FuzzyThreshold)
	}
	if cfg.StartRow != 2 {
		t.Errorf("StartRow = %d, want 2", cfg.StartRow)
	}
	if cfg.MaxColumnsToCheck != 20 {
		t.Errorf("MaxColumnsToCheck = %d, want 20", cfg.MaxColumnsToCheck)
	}
}

// TestLoad_EnvironmentVariables verifies environment variable loading.
func TestLoad_EnvironmentVariables(t *testing.T) {
	withEnv(t, "PORT", "9090")
	withEnv(t, "FUZZY_MATCH_THRESHOLD", "65")
	withEnv(t, "START_ROW", "5")
	withEnv(t, "MAX_COLUMNS_TO_CHECK", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Port != "9090" || cfg.FuzzyThreshold != 65 || cfg.StartRow != 5 || cfg.MaxColumnsToCheck != 10 {
		t.Errorf("environment variables not loaded: %+v", cfg)
	}
}

// TestLoad_OutOfRange verifies that invalid options fail fast.
func TestLoad_OutOfRange(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FUZZY_MATCH_THRESHOLD", "101"},
		{"FUZZY_MATCH_THRESHOLD", "-5"},
		{"FUZZY_MATCH_THRESHOLD", "eighty"},
		{"START_ROW", "0"},
		{"MAX_COLUMNS_TO_CHECK", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			for _, key := range []string{"FUZZY_MATCH_THRESHOLD", "START_ROW", "MAX_COLUMNS_TO_CHECK"} {
				withEnv(t, key, "")
			}
			withEnv(t, tt.key, tt.value)

			_, err := Load()
			var confErr *domain.ConfigurationError
			if !errors.As(err, &confErr) {
				t.Fatalf("Load() error = %v, want ConfigurationError", err)
			}
			if confErr.Field != tt.key {
				t.Errorf("error field = %s, want %s", confErr.Field, tt.key)
			}
		})
	}
}
