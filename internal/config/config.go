package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

// Config holds application runtime configuration.
type Config struct {
	Env             string
	LogLevel        slog.Level
	LogFormat       string
	StoreDriver     string
	SessionDir      string
	CatalogName     string
	DatabaseURL     string
	BadgerDir       string
	MetricsTextfile string
	LineEnding      string
	ConnectTimeout  time.Duration
	JournalEnabled  bool
}

// Load reads environment variables and .env (if present).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:             getEnv("APP_ENV", "development"),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", DriverFile)),
		SessionDir:      getEnv("SESSION_DIR", "sessions"),
		CatalogName:     getEnv("CATALOG_NAME", "default"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		BadgerDir:       getEnv("BADGER_DIR", "data/badger"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		LineEnding:      strings.ToLower(getEnv("POS_LINE_ENDING", "lf")),
		ConnectTimeout:  getDuration("DB_CONNECT_TIMEOUT", 5*time.Second),
		JournalEnabled:  getBool("JOURNAL_ENABLED", true),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return cfg, fmt.Errorf("LOG_FORMAT %q is not text or json", cfg.LogFormat)
	}
	switch cfg.StoreDriver {
	case DriverFile, DriverBadger:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return cfg, errors.New("DATABASE_URL is required")
		}
	default:
		return cfg, fmt.Errorf("STORE_DRIVER %q is not file, postgres or badger", cfg.StoreDriver)
	}
	if cfg.CatalogName == "" {
		return cfg, errors.New("CATALOG_NAME is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		// Support seconds as integer without suffix.
		if secs, convErr := strconv.Atoi(val); convErr == nil {
			return time.Duration(secs) * time.Second
		}
		return fallback
	}
	return d
}

func getBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}
