package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DATA_DIR", "HTML_FILES", "EXTRACT_WORKERS", "TOP505_API_KEY", "BATCH_SIZE", "BATCH_DELAY", "API_TIMEOUT", "MAX_RETRIES",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, []string{"data/site1.html", "data/site2.html"}, cfg.HTMLFiles)
	assert.Equal(t, "data/output.csv", cfg.CatalogPath)
	assert.Equal(t, "data/missing_coverage.csv", cfg.MissingCoveragePath)
	assert.Equal(t, 200, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchDelay)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, "1c", cfg.APISource)
	assert.Equal(t, 1, cfg.ExtractWorkers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/run")
	t.Setenv("HTML_FILES", " a.html, ,b.html ")
	t.Setenv("BATCH_SIZE", "50")
	t.Setenv("BATCH_DELAY", "1.5")
	t.Setenv("API_TIMEOUT", "10s")
	t.Setenv("EXTRACT_RENDER", "true")
	t.Setenv("EXTRACT_WORKERS", "4")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := Load()
	assert.Equal(t, []string{"a.html", "b.html"}, cfg.HTMLFiles)
	assert.Equal(t, "/tmp/run/ads_raw.csv", cfg.AdsRawPath)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 1500*time.Millisecond, cfg.BatchDelay)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.True(t, cfg.ExtractRender)
	assert.Equal(t, 4, cfg.ExtractWorkers)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestValidate(t *testing.T) {
	cfg := &Config{APIKey: "secret", BatchSize: 200, MaxRetries: 3}
	require.NoError(t, cfg.Validate())

	cfg.APIKey = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOP505_API_KEY")

	cfg = &Config{APIKey: "secret", BatchSize: 0, MaxRetries: 0}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
	assert.Contains(t, err.Error(), "MAX_RETRIES")
}
