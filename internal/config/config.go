package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port      string
	Env       string
	LogLevel  string
	StaticDir string

	// CORSOrigins lists the browser origins allowed to send the session cookie.
	CORSOrigins []string

	// Database
	DBDriver   string // "sqlite" or "postgres"
	SQLitePath string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Sessions
	SecretKey    string
	SessionTTL   time.Duration
	SessionStore string // "db", "redis" or "memory"
	CookieSecure bool

	// Redis backs the redis session store and the shared price cache.
	RedisURL string

	// Pricing
	PriceTimeout  time.Duration
	PriceCacheTTL time.Duration

	// Corporate announcements from the exchange filing APIs
	AnnouncementTimeout  time.Duration
	AnnouncementCacheTTL time.Duration

	// AdminAPIKey guards /api/admin; admin routes are disabled when empty.
	AdminAPIKey string

	// SummaryAPIKey is read for the document summarization collaborator,
	// which is not part of this service.
	SummaryAPIKey string
}

const devSecretKey = "dev-secret-change-in-production"

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", ""),
		StaticDir: getEnv("STATIC_DIR", ""),

		// An explicitly empty CORS_ORIGINS turns CORS off.
		CORSOrigins: splitList(lookupEnv("CORS_ORIGINS", "http://localhost:8080")),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		SQLitePath: getEnv("SQLITE_PATH", "users.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "stocktracker"),
		DBPassword: getEnv("DB_PASSWORD", "stocktracker"),
		DBName:     getEnv("DB_NAME", "stocktracker"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SecretKey:    getEnv("SECRET_KEY", devSecretKey),
		SessionStore: strings.ToLower(getEnv("SESSION_STORE", "db")),
		CookieSecure: getBool("COOKIE_SECURE", false),

		RedisURL: getEnv("REDIS_URL", ""),

		AdminAPIKey:   getEnv("ADMIN_API_KEY", ""),
		SummaryAPIKey: getEnv("SUMMARY_API_KEY", ""),
	}

	config.SessionTTL = getDuration("SESSION_TTL", 24*time.Hour)
	config.PriceTimeout = getDuration("PRICE_TIMEOUT", 5*time.Second)
	config.PriceCacheTTL = getDuration("PRICE_CACHE_TTL", time.Minute)
	config.AnnouncementTimeout = getDuration("ANNOUNCEMENT_TIMEOUT", 15*time.Second)
	config.AnnouncementCacheTTL = getDuration("ANNOUNCEMENT_CACHE_TTL", 15*time.Minute)

	if config.SecretKey == devSecretKey && config.Env == "production" {
		return nil, errors.New("SECRET_KEY must be set when ENV=production")
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnv is getEnv for keys where a set but empty value is meaningful.
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// getDuration parses a Go duration ("30s", "24h"); a bare number means seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getBool(key string, defaultValue bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %t\n", key, raw, defaultValue)
		return defaultValue
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
