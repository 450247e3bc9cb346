package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nagare-ml/nagare/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "nagare.db", cfg.SQLitePath)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "cnt", cfg.TargetColumn)
	assert.Equal(t, "prediction", cfg.PredictionColumn)
	assert.Equal(t, time.RFC3339, cfg.TimeLayout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NAGARE_PORT", "9090")
	t.Setenv("NAGARE_NUMERIC_METRIC", "ks")
	t.Setenv("NAGARE_FEATURE_DRIFT_THRESHOLD", "0.3")
	t.Setenv("NAGARE_WORKERS", "4")
	t.Setenv("NAGARE_WINDOW_CSVS", "week1.csv, week2.csv,,week3.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "ks", cfg.NumericMetric)
	assert.Equal(t, 0.3, cfg.FeatureDriftThreshold)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, []string{"week1.csv", "week2.csv", "week3.csv"}, cfg.WindowPaths)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("NAGARE_PORT", "abc")
	t.Setenv("NAGARE_R2_DROP", "not-a-float")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 0.0, cfg.R2Drop)
}

func TestValidateRejectsBadMetric(t *testing.T) {
	t.Setenv("NAGARE_NUMERIC_METRIC", "wasserstein")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NAGARE_NUMERIC_METRIC")
}

func TestValidateRejectsBadDriftedShare(t *testing.T) {
	t.Setenv("NAGARE_DRIFTED_SHARE", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NAGARE_DRIFTED_SHARE")
}

func TestValidateRequiresSomeStore(t *testing.T) {
	cfg := Config{Port: 8080}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestThresholdsConversion(t *testing.T) {
	cfg := Config{
		FeatureDriftThreshold: 0.25,
		NumericMetric:         "ks",
		Workers:               3,
	}

	th := cfg.Thresholds()
	assert.Equal(t, 0.25, th.FeatureDrift)
	assert.Equal(t, model.MetricKS, th.NumericMetric)
	assert.Equal(t, 3, th.Workers)

	// Unset values stay zero and get filled downstream.
	assert.Zero(t, th.R2Drop)
	filled := th.WithDefaults()
	assert.Equal(t, 0.2, filled.R2Drop)
}
