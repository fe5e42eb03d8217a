// Package config loads process settings from the environment, optionally
// primed from a .env file in the working directory.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP server
	Addr            string
	ShutdownTimeout time.Duration

	// Storage. Empty DatabaseURL selects the in-memory store.
	DatabaseURL string
	AutoMigrate bool
	DevSeed     bool

	// Logging
	LogLevel  string
	LogFormat string

	// Analytics result cache. CacheSize 0 disables it.
	CacheTTL  time.Duration
	CacheSize int

	// Optional HS256 bearer auth
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

// Load reads .env (if present) and then the environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	return &Config{
		Addr:            getEnv("ADDR", ":8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		AutoMigrate: getEnvBool("AUTO_MIGRATE", false),
		DevSeed:     getEnvBool("DEV_SEED", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		CacheTTL:  getEnvDuration("CACHE_TTL", 30*time.Second),
		CacheSize: getEnvInt("CACHE_SIZE", 1024),

		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_HS256_SECRET")),
		JWTIssuer:   strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		JWTAudience: strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	} else if i := strings.LastIndex(c.Addr, ":"); i < 0 {
		problems = append(problems, fmt.Sprintf("invalid addr '%s': expected host:port", c.Addr))
	} else if port, err := strconv.Atoi(c.Addr[i+1:]); err != nil {
		problems = append(problems, fmt.Sprintf("invalid addr '%s': port must be a number", c.Addr))
	} else if port < 0 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 0 and 65535", port))
	}

	if c.DatabaseURL != "" {
		if u, err := url.Parse(c.DatabaseURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid DATABASE_URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			problems = append(problems, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	} else if c.AutoMigrate {
		problems = append(problems, "AUTO_MIGRATE requires DATABASE_URL")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error", "err":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be json or text", c.LogFormat))
	}

	if c.CacheSize < 0 {
		problems = append(problems, fmt.Sprintf("invalid cache size %d: must be >= 0", c.CacheSize))
	}
	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		problems = append(problems, fmt.Sprintf("invalid cache ttl %v: must be positive when the cache is enabled", c.CacheTTL))
	}
	if c.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}
	if c.JWTSecret == "" && (c.JWTIssuer != "" || c.JWTAudience != "") {
		problems = append(problems, "JWT_ISSUER/JWT_AUDIENCE require JWT_HS256_SECRET")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c *Config) Level() slog.Leveler {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger builds the process logger writing to stdout.
func (c *Config) Logger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
