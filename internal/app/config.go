package app

import (
	"os"
	"strconv"
	"strings"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	AppEnv   string
	HTTPAddr string

	// StoreDriver selects the persistence backend: "memory", "sqlite"
	// or "postgres".
	StoreDriver       string
	DBDSN             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifeMins int

	CSRFEnforced    bool
	RateLimitPerMin int

	// SessionTickSeconds is the countdown granularity for live exam
	// sessions. Defaults to one second.
	SessionTickSeconds int
}

func LoadConfig() Config {
	return Config{
		AppEnv:             envOrDefault("APP_ENV", "development"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		StoreDriver:        strings.ToLower(envOrDefault("STORE_DRIVER", "memory")),
		DBDSN:              envOrDefault("DB_DSN", "file:testshare.db?_pragma=busy_timeout(5000)"),
		DBMaxOpenConns:     intOrDefault("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:     intOrDefault("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifeMins:  intOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30),
		CSRFEnforced:       boolOrDefault("CSRF_ENFORCED", false),
		RateLimitPerMin:    intOrDefault("RATE_LIMIT_PER_MINUTE", 120),
		SessionTickSeconds: intOrDefault("SESSION_TICK_SECONDS", 1),
	}
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsToInt(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}

func intOrDefault(key string, fallback int) int {
	v := stringsToInt(os.Getenv(key))
	if v <= 0 {
		return fallback
	}
	return v
}

func boolOrDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
