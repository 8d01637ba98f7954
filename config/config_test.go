package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertycrm/server/internal/matching"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5250", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "database/crm.db", cfg.Database.Path)
	assert.Equal(t, 100, cfg.BatchProcessing.MaxBatchSize)
	assert.Equal(t, 2, cfg.BatchProcessing.ProcessorCount)
	assert.Equal(t, 3, cfg.BatchProcessing.MaxRetries)
	assert.Equal(t, 5, cfg.BatchProcessing.RetryDelay)
	assert.Equal(t, 20.0, cfg.BatchProcessing.RateLimit)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 2, cfg.Scheduler.RecomputeHour)
	assert.Empty(t, cfg.Scoring.WeightsFile)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("BATCH_PROCESSOR_COUNT", "6")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("RECOMPUTE_HOUR", "23")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, 6, cfg.BatchProcessing.ProcessorCount)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 23, cfg.Scheduler.RecomputeHour)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"RECOMPUTE_HOUR":        "24",
		"BATCH_PROCESSOR_COUNT": "0",
		"BATCH_MAX_SIZE":        "0",
		"BATCH_MAX_RETRIES":     "-1",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestWeights(t *testing.T) {
	cfg := &Config{}
	w, err := cfg.Weights()
	require.NoError(t, err)
	assert.Equal(t, matching.DefaultWeights(), w)

	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preference:\n  threshold: 60\n"), 0o600))
	cfg.Scoring.WeightsFile = path

	w, err = cfg.Weights()
	require.NoError(t, err)
	assert.Equal(t, 60, w.Preference.Threshold)
}
