package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "fallback-secret-key-for-dev-only"

// Config holds application configuration
type Config struct {
	// Server
	Env         string
	Port        string
	FrontendURL string

	// Database
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBSQLitePath   string
	MigrationsPath string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Mail
	SendGridAPIKey  string
	MailFromAddress string
	MailFromName    string

	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration
	RedisURL        string

	// Email outbox
	OutboxFlushSchedule string
	OutboxMaxAttempts   int
	OutboxBatchSize     int
	OutboxBackoff       time.Duration

	// Observability
	MetricsAPIKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "4000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		// Database
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "cashtrackr"),
		DBPassword:     getEnv("DB_PASSWORD", "cashtrackr"),
		DBName:         getEnv("DB_NAME", "cashtrackr"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		DBSQLitePath:   getEnv("DB_SQLITE_PATH", "cashtrackr.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		// JWT
		JWTSecret:        getEnv("JWT_SECRET", devJWTSecret),
		JWTExpirationDur: getEnvAsDuration("JWT_EXPIRES_IN", 30*24*time.Hour),

		// Mail
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		MailFromAddress: getEnv("MAIL_FROM_ADDRESS", "admin@cashtrackr.com"),
		MailFromName:    getEnv("MAIL_FROM_NAME", "CashTrackr"),

		// Rate limiting
		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 5),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		RedisURL:        getEnv("REDIS_URL", ""),

		// Email outbox
		OutboxFlushSchedule: getEnv("OUTBOX_FLUSH_SCHEDULE", "@every 30s"),
		OutboxMaxAttempts:   getEnvAsInt("OUTBOX_MAX_ATTEMPTS", 5),
		OutboxBatchSize:     getEnvAsInt("OUTBOX_BATCH_SIZE", 50),
		OutboxBackoff:       getEnvAsDuration("OUTBOX_BACKOFF", 30*time.Second),

		// Observability
		MetricsAPIKey: getEnv("METRICS_API_KEY", ""),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// IsProduction reports whether the process runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.IsProduction() && c.JWTSecret == devJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.IsProduction() && c.SendGridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY must be set in production")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (use postgres or sqlite)", c.DBDriver)
	}
	if c.RateLimitMax <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", c.RateLimitMax)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, value, defaultValue)
		return defaultValue
	}
	return d
}
