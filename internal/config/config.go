package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL   string
	HTTPAddr      string
	LogLevel      string
	Env           string // dev|prod
	SentryDSN     string
	Release       string
	AuditInterval time.Duration
	DBTimeout     time.Duration
	DBMaxConns    int
}

// Load reads the configuration from the environment. DATABASE_URL is required.
func Load() (*Config, error) {
	var errs []error

	auditEvery, err := durationEnv("AUDIT_INTERVAL", 5*time.Minute)
	if err != nil {
		errs = append(errs, err)
	}
	dbTimeout, err := durationEnv("DB_TIMEOUT", 5*time.Second)
	if err != nil {
		errs = append(errs, err)
	}
	maxConns, err := intEnv("DB_MAX_CONNS", 10)
	if err != nil {
		errs = append(errs, err)
	}

	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		Env:           getenv("ENV", "dev"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Release:       getenv("RELEASE", "dev"),
		AuditInterval: auditEvery,
		DBTimeout:     dbTimeout,
		DBMaxConns:    maxConns,
	}
	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("required env DATABASE_URL is empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", k, v)
	}
	return d, nil
}

func intEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}
