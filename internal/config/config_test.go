package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "https://openrouter.ai/api", cfg.BaseURL)
	assert.Equal(t, DefaultModels, cfg.Models)
	assert.Equal(t, 30*time.Second, cfg.ChainTimeout)
	assert.Equal(t, "http://localhost:5173", cfg.SiteURL)
	assert.Equal(t, "TripPlanner.ai", cfg.SiteName)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(65536), cfg.MaxMessageSize)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ENV", "Development")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("TRIP_MODE", "mock")
	t.Setenv("LLM_MODELS", " a/one , b/two,, ")
	t.Setenv("CHAIN_TIMEOUT_MS", "1500")
	t.Setenv("STRICT_ITINERARY_SHAPE", "true")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, "MOCK", cfg.Mode)
	assert.Equal(t, []string{"a/one", "b/two"}, cfg.Models)
	assert.Equal(t, 1500*time.Millisecond, cfg.ChainTimeout)
	assert.True(t, cfg.StrictItineraryShape)
	assert.Equal(t, "or-key", cfg.APIKey)
}

func TestLoadPrefersLLMAPIKey(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LLM_API_KEY", "primary")
	t.Setenv("OPENROUTER_API_KEY", "secondary")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.APIKey)
}

func TestLoadRejectsBadPort(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HTTP_PORT", "70000")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadSampling(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.Temperature)
	assert.Zero(t, cfg.MaxTokens)

	t.Setenv("LLM_TEMPERATURE", "0")
	t.Setenv("LLM_MAX_TOKENS", "4096")
	cfg, err = Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, 0.0, *cfg.Temperature)
	assert.Equal(t, 4096, cfg.MaxTokens)

	t.Setenv("LLM_TEMPERATURE", "3.5")
	_, err = Load()
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test,
// matching testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
