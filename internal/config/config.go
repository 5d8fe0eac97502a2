package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP API + fanout
	HTTPHost string
	HTTPPort int

	// Request limiter (token bucket)
	RateLimitPerSec float64
	RateLimitBurst  int

	// Presets YAML; empty uses the embedded defaults
	PresetsPath string

	// SQLite scenario log; empty disables it
	ScenarioStorePath string
	ScenarioStoreMax  int

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPHost: envStr("HTTP_HOST", "0.0.0.0"),
		HTTPPort: envInt("HTTP_PORT", 8780),

		RateLimitPerSec: envFloat("RATE_LIMIT_PER_SEC", 20),
		RateLimitBurst:  envInt("RATE_LIMIT_BURST", 40),

		PresetsPath: envStr("PRESETS_PATH", ""),

		ScenarioStorePath: envStr("SCENARIO_STORE_PATH", ""),
		ScenarioStoreMax:  envInt("SCENARIO_STORE_MAX_ROWS", 100000),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
