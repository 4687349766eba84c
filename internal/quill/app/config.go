package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/quill/pkg/authhttp"
	quillredis "github.com/aussiebroadwan/quill/pkg/storage/drivers/redis"
)

// Storage modes for the durable session store.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type Config struct {
	BaseURL      string        // Required: backend origin, e.g. https://quill.example.com
	Storage      string        // Optional: memory, sqlite, redis (default: sqlite)
	DatabaseFile string        // Optional: SQLite file for the sqlite mode (default: ./quill.db)
	RedisAddr    string        // Optional: Redis address for the redis mode (default: localhost:6379)
	RedisNS      string        // Optional: Redis hash holding the session (default: quill:session)
	SealKey      string        // Optional: passphrase that encrypts stored values
	SealKeyFile  string        // Optional: file holding the passphrase, read when SealKey is empty
	APITimeout   time.Duration // General client timeout (default: 80s)
	LoginTimeout time.Duration // Login client timeout (default: 50s)
	RefreshPath  string        // Renewal endpoint (default: /api/auth/refresh)
	RateLimitRPS float64       // Optional: outbound requests per second, 0 disables
	RateBurst    int           // Optional: burst for the rate limit (default: 1)
	Env          string        // Environment (dev, staging, prod) (default: dev)
	LogLevel     string        // Log level (debug, info, warn, error) (default: info)
	LogFormat    string        // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		BaseURL:      getEnvOrDefault("QUILL_BASE_URL", "http://localhost:8000"),
		Storage:      strings.ToLower(getEnvOrDefault("QUILL_STORAGE", StorageSQLite)),
		DatabaseFile: getEnvOrDefault("QUILL_DATABASE_FILE", "quill.db"),
		RedisAddr:    getEnvOrDefault("QUILL_REDIS_ADDR", "localhost:6379"),
		RedisNS:      getEnvOrDefault("QUILL_REDIS_NAMESPACE", quillredis.DefaultNamespace),
		SealKey:      os.Getenv("QUILL_SEAL_PASSPHRASE"),
		SealKeyFile:  os.Getenv("QUILL_SEAL_PASSPHRASE_FILE"),
		APITimeout:   getEnvDurationOrDefault("QUILL_API_TIMEOUT", authhttp.DefaultAPITimeout),
		LoginTimeout: getEnvDurationOrDefault("QUILL_LOGIN_TIMEOUT", authhttp.DefaultLoginTimeout),
		RefreshPath:  getEnvOrDefault("QUILL_REFRESH_PATH", authhttp.DefaultRefreshPath),
		RateLimitRPS: getEnvFloatOrDefault("QUILL_RATE_LIMIT_RPS", 0),
		RateBurst:    getEnvIntOrDefault("QUILL_RATE_LIMIT_BURST", 1),
		Env:          getEnvOrDefault("ENV", "dev"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:    getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

// Validate reports every problem with cfg at once.
func (c Config) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("QUILL_BASE_URL is required"))
	} else if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("QUILL_BASE_URL must be an http(s) URL, got %q", c.BaseURL))
	}

	switch c.Storage {
	case StorageMemory, StorageRedis:
	case StorageSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("QUILL_DATABASE_FILE is required for sqlite storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage mode %q (memory, sqlite, redis)", c.Storage))
	}

	if c.APITimeout <= 0 || c.LoginTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, errors.New("QUILL_RATE_LIMIT_RPS must not be negative"))
	}
	return errors.Join(errs...)
}

// sealPassphrase returns the configured passphrase, reading SealKeyFile when
// no inline value is set. Empty means values are stored in clear.
func (c Config) sealPassphrase() (string, error) {
	if c.SealKey != "" || c.SealKeyFile == "" {
		return c.SealKey, nil
	}
	raw, err := os.ReadFile(c.SealKeyFile)
	if err != nil {
		return "", fmt.Errorf("failed to read seal passphrase file: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "80s", "1m")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
