package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds client configuration values.
type Config struct {
	APIBaseURL      string
	StoragePath     string
	PaymentCallback string
	RequestTimeout  time.Duration
	SyncDebounce    time.Duration
}

// Load reads environment variables and returns a populated Config.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:      getEnv("STOREFRONT_API_URL", "http://localhost:8080"),
		StoragePath:     getEnv("STOREFRONT_STORAGE_PATH", defaultStoragePath()),
		PaymentCallback: getEnv("STOREFRONT_PAYMENT_CALLBACK", "127.0.0.1:4280"),
		RequestTimeout:  getEnvDuration("STOREFRONT_REQUEST_TIMEOUT_MS", 15000),
		SyncDebounce:    getEnvDuration("STOREFRONT_SYNC_DEBOUNCE_MS", 1000),
	}

	if cfg.APIBaseURL == "" {
		log.Fatal("STOREFRONT_API_URL must be set")
	}

	return cfg
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "storefront.db"
	}
	return filepath.Join(home, ".storefront", "storefront.db")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallbackMS int) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return time.Duration(parsed) * time.Millisecond
		}
	}
	return time.Duration(fallbackMS) * time.Millisecond
}
