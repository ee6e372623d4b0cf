// Package config loads process configuration from the environment, with an
// optional .env file for development.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config is the process configuration.
type Config struct {
	// DataDir holds the SQLite database. Defaults to ~/.meallogger.
	DataDir string

	// GoogleAccessToken, when set, overrides the credential cached in the
	// device settings record. Useful for scripting against a short-lived
	// token from `gcloud auth print-access-token`.
	GoogleAccessToken string

	// GeminiAPIKey enables the meal photo estimator. Empty disables it.
	GeminiAPIKey string

	Logger LoggerConfig
}

// LoggerConfig controls the structured logger.
type LoggerConfig struct {
	Level string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".meallogger"
	}
	return filepath.Join(home, ".meallogger")
}

// Load reads the configuration. A missing .env file is not an error; the
// environment alone is enough.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		DataDir:           getEnvOrDefault("MEALLOGGER_DATA_DIR", defaultDataDir()),
		GoogleAccessToken: os.Getenv("GOOGLE_ACCESS_TOKEN"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		Logger: LoggerConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
	}, nil
}
