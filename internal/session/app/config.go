package app

import (
	"os"
	"strconv"
	"time"

	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/pkg/jwtx"
)

type Config struct {
	JoseSecret string // Required for minting: session token signing secret (never defaulted)

	CookieName   string        // Optional: primary session cookie name (default: authToken)
	CookieDomain string        // Optional: explicit parent domain used in production (default: .certquest.app)
	SessionTTL   time.Duration // Optional: session token and cookie lifetime (default: 1h)

	FirebaseProjectID       string // Required: Firebase project backing the identity provider
	FirebaseCredentialsFile string // Optional: service account JSON, application default credentials otherwise
	FirebaseCheckRevoked    bool   // Optional: also ask Firebase whether the token was revoked or the user disabled (default: true)

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./sessiond.db)
	Env                  string        // Environment (dev, staging, production) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	LedgerRetention      time.Duration // How long expired ledger rows are kept (default: 24h)
}

func LoadConfig() Config {
	return Config{
		JoseSecret:              os.Getenv("JOSE_SECRET"),
		CookieName:              getEnvOrDefault("SESSION_COOKIE_NAME", service.DefaultCookieName),
		CookieDomain:            getEnvOrDefault("COOKIE_DOMAIN", service.DefaultCookieDomain),
		SessionTTL:              getEnvDurationOrDefault("SESSION_TTL", jwtx.DefaultSessionTTL),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		FirebaseCheckRevoked:    getEnvBoolOrDefault("FIREBASE_CHECK_REVOKED", true),
		DatabaseFile:            getEnvOrDefault("DATABASE_FILE", "sessiond.db"),
		Env:                     getEnvOrDefault("ENV", "dev"),
		LogLevel:                getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:               getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                    getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:     getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval:    getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		LedgerRetention:         getEnvDurationOrDefault("LEDGER_RETENTION", service.DefaultLedgerRetention),
	}
}

// Production reports whether cookies must be Secure and domain-scoped.
func (c Config) Production() bool {
	return c.Env == "production" || c.Env == "prod"
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
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
