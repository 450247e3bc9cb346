// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nagare-ml/nagare/internal/model"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Storage settings. DatabaseURL takes precedence over SQLitePath
	// when both are set.
	DatabaseURL string // Postgres URL; empty selects the SQLite store.
	SQLitePath  string

	// Dataset settings.
	ReferencePath    string   // CSV file with the reference baseline.
	WindowPaths      []string // CSV files, one window each.
	TargetColumn     string
	PredictionColumn string
	TimeColumn       string
	TimeLayout       string
	// CategoricalColumns forces the named columns to categorical during
	// CSV loading, overriding numeric inference.
	CategoricalColumns []string

	// Drift thresholds. Zero values fall back to the documented defaults.
	FeatureDriftThreshold float64
	NumericMetric         string // "psi" or "ks"
	CorrelationDelta      float64
	R2Drop                float64
	RMSEGrowth            float64
	DriftedShare          float64
	Workers               int

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:                  envInt("NAGARE_PORT", 8080),
		ReadTimeout:           envDuration("NAGARE_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:          envDuration("NAGARE_WRITE_TIMEOUT", 30*time.Second),
		DatabaseURL:           envStr("DATABASE_URL", ""),
		SQLitePath:            envStr("NAGARE_SQLITE_PATH", "nagare.db"),
		ReferencePath:         envStr("NAGARE_REFERENCE_CSV", ""),
		WindowPaths:           envList("NAGARE_WINDOW_CSVS"),
		TargetColumn:          envStr("NAGARE_TARGET_COLUMN", "cnt"),
		PredictionColumn:      envStr("NAGARE_PREDICTION_COLUMN", "prediction"),
		TimeColumn:            envStr("NAGARE_TIME_COLUMN", ""),
		TimeLayout:            envStr("NAGARE_TIME_LAYOUT", time.RFC3339),
		CategoricalColumns:    envList("NAGARE_CATEGORICAL_COLUMNS"),
		FeatureDriftThreshold: envFloat("NAGARE_FEATURE_DRIFT_THRESHOLD", 0),
		NumericMetric:         envStr("NAGARE_NUMERIC_METRIC", ""),
		CorrelationDelta:      envFloat("NAGARE_CORRELATION_DELTA", 0),
		R2Drop:                envFloat("NAGARE_R2_DROP", 0),
		RMSEGrowth:            envFloat("NAGARE_RMSE_GROWTH", 0),
		DriftedShare:          envFloat("NAGARE_DRIFTED_SHARE", 0),
		Workers:               envInt("NAGARE_WORKERS", 0),
		OTELEndpoint:          envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:          envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		ServiceName:           envStr("OTEL_SERVICE_NAME", "nagare"),
		LogLevel:              envStr("NAGARE_LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that configuration values are usable.
func (c Config) Validate() error {
	if c.DatabaseURL == "" && c.SQLitePath == "" {
		return fmt.Errorf("config: DATABASE_URL or NAGARE_SQLITE_PATH is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: NAGARE_PORT must be in (0, 65535]")
	}
	switch c.NumericMetric {
	case "", string(model.MetricPSI), string(model.MetricKS):
	default:
		return fmt.Errorf("config: NAGARE_NUMERIC_METRIC must be %q or %q", model.MetricPSI, model.MetricKS)
	}
	if c.FeatureDriftThreshold < 0 {
		return fmt.Errorf("config: NAGARE_FEATURE_DRIFT_THRESHOLD must not be negative")
	}
	if c.DriftedShare < 0 || c.DriftedShare > 1 {
		return fmt.Errorf("config: NAGARE_DRIFTED_SHARE must be in [0, 1]")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: NAGARE_WORKERS must not be negative")
	}
	return nil
}

// Thresholds converts the configured overrides into monitor thresholds.
// Zero values are filled with defaults by the monitor.
func (c Config) Thresholds() model.Thresholds {
	return model.Thresholds{
		FeatureDrift:     c.FeatureDriftThreshold,
		NumericMetric:    model.MetricKind(c.NumericMetric),
		CorrelationDelta: c.CorrelationDelta,
		R2Drop:           c.R2Drop,
		RMSEGrowth:       c.RMSEGrowth,
		DriftedShare:     c.DriftedShare,
		Workers:          c.Workers,
	}
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// envList parses a comma-separated environment variable into a slice,
// dropping empty entries.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
