package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds everything the gateway reads from the environment. It is
// loaded once at startup and treated as read-only afterwards.
type Config struct {
	HTTPPort       string
	Env            string
	BackendURL     string
	NutritionURL   string
	SessionSecret  string
	SessionTTL     time.Duration
	BackendTimeout time.Duration
	EnforceTrainer bool
}

func (c Config) Production() bool { return c.Env == "production" }

// FromEnv builds a Config from environment variables. SESSION_SECRET is
// mandatory in production; in development a random per-process secret is
// generated when none is set, so sessions do not survive a restart.
func FromEnv() (Config, error) {
	backend := trimBase(getEnv("BACKEND_URL", getEnv("PYTHON_BACKEND_URL", "http://127.0.0.1:8000")))
	cfg := Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("APP_ENV", "development"),
		BackendURL:     backend,
		NutritionURL:   trimBase(getEnv("NUTRITION_API_URL", backend)),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionTTL:     getDuration("SESSION_TTL", 7*24*time.Hour),
		BackendTimeout: getDuration("BACKEND_TIMEOUT", 15*time.Second),
		EnforceTrainer: getBool("ENFORCE_TRAINER", false),
	}
	if cfg.SessionSecret == "" {
		if cfg.Production() {
			return Config{}, fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = randomSecret()
	}
	return cfg, nil
}

func trimBase(u string) string {
	return strings.TrimRight(u, "/")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true"
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
