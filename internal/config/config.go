// Package config loads runtime settings from the environment. A .env file is
// honored when present (loaded by the entrypoints via godotenv); the
// environment always wins.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the entrypoints need to wire the bot together.
type Config struct {
	// GeminiAPIKey authenticates the model client. Required.
	GeminiAPIKey string

	// Model is the Gemini model name used for both hops.
	Model string

	// DBPath is the SQLite database file, or ":memory:".
	DBPath string

	// ExportDir is where generated report files land.
	ExportDir string

	// HistoryWindow is the number of conversation exchanges kept per user.
	HistoryWindow int

	// ModelTimeout bounds each model call.
	ModelTimeout time.Duration

	// SearchURL is the optional web-search endpoint; empty disables live
	// search and the bot falls back to static estimates.
	SearchURL string

	// SearchTimeout bounds each search request.
	SearchTimeout time.Duration

	// HTTPAddr is the API server listen address.
	HTTPAddr string
}

// Load reads configuration from the environment, applying defaults for
// everything except the API key.
func Load() (Config, error) {
	cfg := Config{
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		Model:         getenv("FINBOT_MODEL", "gemini-2.5-flash"),
		DBPath:        getenv("FINBOT_DB_PATH", "finbot.db"),
		ExportDir:     getenv("FINBOT_EXPORT_DIR", "exports"),
		SearchURL:     os.Getenv("FINBOT_SEARCH_URL"),
		HTTPAddr:      getenv("FINBOT_HTTP_ADDR", ":8080"),
		HistoryWindow: 5,
		ModelTimeout:  60 * time.Second,
		SearchTimeout: 12 * time.Second,
	}

	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("config: GEMINI_API_KEY is not set")
	}

	if raw := os.Getenv("FINBOT_HISTORY_WINDOW"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("config: invalid FINBOT_HISTORY_WINDOW %q", raw)
		}
		cfg.HistoryWindow = n
	}

	var err error
	if cfg.ModelTimeout, err = durationEnv("FINBOT_MODEL_TIMEOUT", cfg.ModelTimeout); err != nil {
		return Config{}, err
	}
	if cfg.SearchTimeout, err = durationEnv("FINBOT_SEARCH_TIMEOUT", cfg.SearchTimeout); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: invalid %s %q", key, raw)
	}
	return d, nil
}
