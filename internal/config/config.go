// Package config provides configuration management for Concierge.
// It loads settings from environment variables with the CONCIERGE_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration settings for the Concierge application.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	LLM     LLMConfig
	Intent  IntentConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port         int     // Server port (default: 5000)
	Host         string  // Server host (default: 127.0.0.1)
	RatePerSec   float64 // Sustained request rate limit (default: 10)
	RateBurst    int     // Burst size for the rate limiter (default: 20)
	AllowOrigins string  // Comma-separated websocket origin patterns ("" = same host only)
}

// StorageConfig contains record store configuration.
type StorageConfig struct {
	Engine      string // Storage engine: sqlite, postgres (default: sqlite)
	DataPath    string // Data directory for SQLite and JSON snapshots (default: ./data)
	PostgresDSN string // Postgres connection string (used when Engine is postgres)
}

// LLMConfig contains generation backend configuration.
//
// An empty OllamaURL sends every request straight to the fallback backend;
// when FallbackURL is also empty the deterministic extractor answers all
// queries.
type LLMConfig struct {
	OllamaURL     string        // Primary backend URL ("" disables the primary)
	OllamaModel   string        // Primary model name (default: llama3.2:1b)
	FallbackURL   string        // Secondary backend URL ("" disables the fallback)
	FallbackKind  string        // Secondary backend kind: vllm, openai, ollama (default: vllm)
	FallbackModel string        // Secondary model name
	APIKey        string        // API key for OpenAI-compatible fallbacks
	Timeout       time.Duration // Per-request backend timeout (default: 15s)
	MaxRetries    int           // Retry bound for the primary backend (default: 1)
	CacheTTL      time.Duration // Response cache entry lifetime (default: 5m)
	CacheSize     int           // Response cache capacity, FIFO-evicted (default: 100)
}

// IntentConfig contains intent classifier configuration.
type IntentConfig struct {
	OverridesPath string // Optional YAML file adding or re-prioritizing intent matchers
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the CONCIERGE_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("CONCIERGE_PORT", 5000),
			Host:         getEnv("CONCIERGE_HOST", "127.0.0.1"),
			RatePerSec:   getEnvFloat("CONCIERGE_RATE_PER_SEC", 10.0),
			RateBurst:    getEnvInt("CONCIERGE_RATE_BURST", 20),
			AllowOrigins: getEnv("CONCIERGE_WS_ORIGINS", ""),
		},
		Storage: StorageConfig{
			Engine:      getEnv("CONCIERGE_STORAGE_ENGINE", "sqlite"),
			DataPath:    getEnv("CONCIERGE_DATA_PATH", "./data"),
			PostgresDSN: getEnv("CONCIERGE_POSTGRES_DSN", ""),
		},
		LLM: LLMConfig{
			OllamaURL:     getEnv("CONCIERGE_OLLAMA_URL", ""),
			OllamaModel:   getEnv("CONCIERGE_OLLAMA_MODEL", "llama3.2:1b"),
			FallbackURL:   getEnv("CONCIERGE_FALLBACK_LLM_URL", ""),
			FallbackKind:  getEnv("CONCIERGE_FALLBACK_LLM_TYPE", "vllm"),
			FallbackModel: getEnv("CONCIERGE_FALLBACK_MODEL", "meta-llama/Llama-2-7b-chat-hf"),
			APIKey:        getEnv("CONCIERGE_LLM_API_KEY", ""),
			Timeout:       getEnvDuration("CONCIERGE_LLM_TIMEOUT", 15*time.Second),
			MaxRetries:    getEnvInt("CONCIERGE_LLM_MAX_RETRIES", 1),
			CacheTTL:      getEnvDuration("CONCIERGE_CACHE_TTL", 5*time.Minute),
			CacheSize:     getEnvInt("CONCIERGE_CACHE_SIZE", 100),
		},
		Intent: IntentConfig{
			OverridesPath: getEnv("CONCIERGE_INTENT_OVERRIDES", ""),
		},
	}, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the environment variable exists but cannot be parsed as an
// integer, it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns a
// default value. Accepts Go duration strings ("15s", "5m") and bare
// millisecond integers for compatibility with older deployments.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
