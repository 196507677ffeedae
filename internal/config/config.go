package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP server configuration
	Server ServerConfig

	// Database Configuration
	Database DatabaseConfig

	// Redis Configuration (task queue)
	Redis RedisConfig

	// Authentication configuration
	Auth AuthConfig

	// Document upload configuration
	Uploads UploadConfig

	// Logging Configuration
	Logging LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr           string   // listen address (host:port)
	AllowedOrigins []string // CORS origins allowed to send credentials
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string // Redis address (host:port)
}

// AuthConfig holds session and token configuration
type AuthConfig struct {
	JWTSecret       string        // HS256 secret for the access-token cookie
	AccessTokenTTL  time.Duration // lifetime of the session cookie
	ResetTokenTTL   time.Duration // lifetime of password-reset tokens
	CookieSecure    bool          // set Secure on the session cookie (disable for local HTTP dev)
	SeedFixturePath string        // optional YAML seed file loaded at startup
}

// UploadConfig holds document upload configuration
type UploadConfig struct {
	Dir             string        // directory uploaded files are written to
	MaxBytes        int64         // per-file size limit
	FailedRetention time.Duration // how long failed documents are kept before cleanup
	CleanupSchedule string        // cron expression for the cleanup sweep
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	cfg := &Config{
		Server: ServerConfig{
			Addr:           getEnv("SERVER_ADDR", ":8080"),
			AllowedOrigins: []string{getEnv("CORS_ORIGIN", "http://localhost:5173")},
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", "atrium.sqlite"),
		},
		Redis: RedisConfig{
			Address: getEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		Auth: AuthConfig{
			JWTSecret:       os.Getenv("JWT_SECRET"),
			AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 8*24*time.Hour),
			ResetTokenTTL:   getEnvDuration("RESET_TOKEN_TTL", time.Hour),
			CookieSecure:    getEnvBool("COOKIE_SECURE", true),
			SeedFixturePath: os.Getenv("SEED_FIXTURE_PATH"),
		},
		Uploads: UploadConfig{
			Dir:             getEnv("UPLOAD_DIR", "uploads"),
			MaxBytes:        getEnvInt64("UPLOAD_MAX_BYTES", 25<<20),
			FailedRetention: getEnvDuration("FAILED_DOCUMENT_RETENTION", 72*time.Hour),
			CleanupSchedule: getEnv("CLEANUP_SCHEDULE", "0 * * * *"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}
