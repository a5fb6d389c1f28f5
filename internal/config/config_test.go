package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 10.0, cfg.Server.RatePerSec)
	assert.Equal(t, 20, cfg.Server.RateBurst)
	assert.Equal(t, "sqlite", cfg.Storage.Engine)
	assert.Equal(t, "./data", cfg.Storage.DataPath)
	assert.Empty(t, cfg.LLM.OllamaURL)
	assert.Equal(t, "llama3.2:1b", cfg.LLM.OllamaModel)
	assert.Equal(t, "vllm", cfg.LLM.FallbackKind)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 1, cfg.LLM.MaxRetries)
	assert.Equal(t, 5*time.Minute, cfg.LLM.CacheTTL)
	assert.Equal(t, 100, cfg.LLM.CacheSize)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CONCIERGE_PORT", "8080")
	t.Setenv("CONCIERGE_STORAGE_ENGINE", "postgres")
	t.Setenv("CONCIERGE_POSTGRES_DSN", "postgres://localhost/concierge")
	t.Setenv("CONCIERGE_OLLAMA_URL", "http://ollama:11434")
	t.Setenv("CONCIERGE_LLM_MAX_RETRIES", "3")
	t.Setenv("CONCIERGE_LLM_TIMEOUT", "30s")
	t.Setenv("CONCIERGE_RATE_PER_SEC", "2.5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Engine)
	assert.Equal(t, "postgres://localhost/concierge", cfg.Storage.PostgresDSN)
	assert.Equal(t, "http://ollama:11434", cfg.LLM.OllamaURL)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 2.5, cfg.Server.RatePerSec)
}

func TestLoadConfigInvalidValuesFallBack(t *testing.T) {
	t.Setenv("CONCIERGE_PORT", "not-a-number")
	t.Setenv("CONCIERGE_LLM_TIMEOUT", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
}

func TestDurationMillisecondCompat(t *testing.T) {
	t.Setenv("CONCIERGE_CACHE_TTL", "90000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.LLM.CacheTTL)
}
