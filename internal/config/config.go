package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultSessionSecret = "secret_key_change_me"
	defaultJWTSecret     = "secret"
)

type Config struct {
	Port              string
	DatabaseURL       string
	AppEnv            string
	SessionSecret     string
	JWTSecret         string
	FingerprintSecret string
	ViewDedupWindow   time.Duration // repeat views inside this window are dropped
	SessionTTL        time.Duration // lifetime of the session cookie and cached fingerprint
	ToggleRate        int           // helpful-vote toggles allowed per identity per minute
	TrendingThreshold float64
	LogLevel          string
	LogFormat         string
	SeedPosts         bool
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	appEnv := getEnv("APP_ENV", "local")
	logFormat := "console"
	if appEnv == "production" {
		logFormat = "json"
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=cityguide port=5432 sslmode=disable TimeZone=Asia/Jakarta"),
		AppEnv:            appEnv,
		SessionSecret:     getEnv("SESSION_SECRET", defaultSessionSecret),
		JWTSecret:         getEnv("JWT_SECRET", defaultJWTSecret),
		FingerprintSecret: getEnv("FINGERPRINT_SECRET", ""),
		ViewDedupWindow:   getDuration("VIEW_DEDUP_WINDOW", time.Hour),
		SessionTTL:        getDuration("SESSION_TTL", 24*time.Hour),
		ToggleRate:        getInt("TOGGLE_RATE_PER_MINUTE", 30),
		TrendingThreshold: getFloat("TRENDING_THRESHOLD", 20),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", logFormat),
		SeedPosts:         getBool("SEED_POSTS", true),
	}
}

// IsProduction reports whether cookies should be marked secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DefaultSecrets lists the secret variables left unset or at their
// development defaults.
func (c *Config) DefaultSecrets() []string {
	var names []string
	if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
		names = append(names, "JWT_SECRET")
	}
	if c.SessionSecret == "" || c.SessionSecret == defaultSessionSecret {
		names = append(names, "SESSION_SECRET")
	}
	return names
}

// Validate rejects a production config that still signs tokens or
// cookies with a development secret.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if names := c.DefaultSecrets(); len(names) > 0 {
		return errors.New("production requires " + strings.Join(names, " and ") + " to be set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil || i <= 0 {
		return fallback
	}
	return i
}

func getFloat(key string, fallback float64) float64 {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
