package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/credkit/internal/credential/service"
	"github.com/aussiebroadwan/credkit/pkg/jwtx"
)

type Config struct {
	Issuer         string // Required: issuer claim on minted tokens
	BootstrapToken string // Optional: token required to perform bootstrap

	Algorithm      string // Optional: JWT signing algorithm (ES256, EdDSA) (default: EdDSA)
	KeyStorageMode string // Optional: key storage mode (ephemeral, sealed) (default: ephemeral)
	MasterKeyPath  string // Optional: path to master encryption key file (required for sealed keys)
	SigningKeyFile string // Optional: path to the sealed signing key file (default: ./signing.key)

	AccessTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL time.Duration // Optional: refresh token lifetime (default: 30 days)
	CSRFTTL    time.Duration // Optional: anti-forgery token lifetime (default: 1h)

	SecondFactorSkew     int           // Optional: accepted TOTP steps either side of now (default: 1)
	SecondFactorAttempts int           // Optional: failed TOTP attempts before throttling (default: 5)
	SecondFactorWindow   time.Duration // Optional: TOTP failure-counting window (default: 5m)

	CacheDriver   string // Optional: cache backend (redis, sqlite, memory) (default: sqlite)
	DatabaseFile  string // Optional: path to SQLite database file (default: ./credkit.db)
	RedisAddr     string // Optional: redis host:port (required for the redis driver)
	RedisPassword string // Optional: redis password
	RedisDB       int    // Optional: redis database number (default: 0)

	PepperFile string // Optional: path to file containing the API key fingerprint pepper

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:         os.Getenv("CREDKIT_ISSUER"),
		Algorithm:      getEnvOrDefault("CREDKIT_ALGORITHM", "EdDSA"),
		KeyStorageMode: getEnvOrDefault("CREDKIT_KEY_STORAGE_MODE", "ephemeral"),
		MasterKeyPath:  os.Getenv("CREDKIT_MASTER_KEY_PATH"), // Optional
		SigningKeyFile: getEnvOrDefault("CREDKIT_SIGNING_KEY_FILE", "signing.key"),

		AccessTTL:  getEnvDurationOrDefault("CREDKIT_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("CREDKIT_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		CSRFTTL:    getEnvDurationOrDefault("CREDKIT_CSRF_TTL", service.DefaultCSRFTokenTTL),

		SecondFactorSkew:     getEnvIntOrDefault("CREDKIT_2FA_SKEW", service.DefaultSecondFactorSkew),
		SecondFactorAttempts: getEnvIntOrDefault("CREDKIT_2FA_MAX_ATTEMPTS", service.DefaultSecondFactorAttempts),
		SecondFactorWindow:   getEnvDurationOrDefault("CREDKIT_2FA_WINDOW", service.DefaultSecondFactorWindow),

		CacheDriver:   getEnvOrDefault("CREDKIT_CACHE_DRIVER", "sqlite"),
		DatabaseFile:  getEnvOrDefault("CREDKIT_DATABASE_FILE", "credkit.db"),
		RedisAddr:     os.Getenv("CREDKIT_REDIS_ADDR"),
		RedisPassword: os.Getenv("CREDKIT_REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("CREDKIT_REDIS_DB", 0),

		PepperFile: getEnvOrDefault("CREDKIT_PEPPER_FILE", "pepper"), // Default to ./pepper
		BootstrapToken: os.Getenv(
			"BOOTSTRAP_TOKEN",
		), // Optional: if set, required to perform bootstrap

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "credkit"
	}

	return cfg
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
