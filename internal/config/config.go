package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AdminAPIURL           string
	AuthAPIURL            string
	TokenFile             string
	HTTPTimeout           time.Duration
	StrictOrderValidation bool
	LogLevel              slog.Level
	DevAPIPort            string
	DevAPISeed            bool
}

// Load reads the environment, after loading an optional .env file from the
// working directory. Values already set in the environment win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AdminAPIURL:           getenv("ADMIN_API_URL", "http://localhost:5286"),
		AuthAPIURL:            getenv("AUTH_API_URL", "http://localhost:5157"),
		TokenFile:             getenv("TOKEN_FILE", defaultTokenFile()),
		HTTPTimeout:           readDuration("HTTP_TIMEOUT", 10*time.Second),
		StrictOrderValidation: readBool("ORDER_STRICT_VALIDATION", true),
		LogLevel:              readLevel("LOG_LEVEL", slog.LevelInfo),
		DevAPIPort:            getenv("DEVAPI_PORT", "5286"),
		DevAPISeed:            readBool("DEVAPI_SEED", true),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func readDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}

func readLevel(key string, fallback slog.Level) slog.Level {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return fallback
	}
	return lvl
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "bookstore-admin", "credentials.json")
}
