// Package config loads kodscript host configuration from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config holds host settings. CLI flags override these values.
type Config struct {
	// DBPath is the SQLite database for variables, named expressions and history.
	DBPath string `env:"KOD_DB" envDefault:"kod.db"`
	// Seed fixes the dice generator. Zero uses the shared default generator.
	Seed int64 `env:"KOD_SEED"`
	// HistoryLimit is the number of entries :history shows by default.
	HistoryLimit int `env:"KOD_HISTORY_LIMIT" envDefault:"20"`
	// Verbose enables debug logging.
	Verbose bool `env:"KOD_VERBOSE"`
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.HistoryLimit < 0 {
		return Config{}, fmt.Errorf("KOD_HISTORY_LIMIT must be non-negative, got %d", cfg.HistoryLimit)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
