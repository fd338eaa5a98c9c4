package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPAddr      = ":8080"
	defaultDatabaseURL   = "docvault.db"
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultJWTAccessTTL  = "24h"
	defaultUploadDir     = "./uploads"
	defaultMaxUploadSize = "52428800" // 50 MB
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	DatabaseURL   string
	JWTSecret     string
	JWTAccessTTL  time.Duration
	UploadDir     string
	MaxUploadSize int64
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.UploadDir = strings.TrimSpace(getEnv("UPLOAD_DIR", defaultUploadDir))

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}

	cfg.MaxUploadSize, err = parseInt64Env("MAX_UPLOAD_SIZE", defaultMaxUploadSize)
	if err != nil {
		return nil, err
	}

	if cfg.AppEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
	return d, nil
}

func parseInt64Env(key, fallback string) (int64, error) {
	raw := getEnv(key, fallback)
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, raw, err)
	}
	return n, nil
}
