package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is built once in main and threaded through constructors.
type Config struct {
	PostgresURI string
	RedisURI    string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	EmailTokenTTL   time.Duration

	Port           string
	BaseURL        string // public URL of this service, used in confirmation links
	AllowedOrigins []string

	RateLimitRequests int           // allowed requests per window on limited routes
	RateLimitWindow   time.Duration // fixed-window size

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	MailServer   string
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string
}

func Load() *Config {
	return &Config{
		PostgresURI: getEnv("POSTGRES_URI", "postgres://localhost:5432/contacts?sslmode=disable"),
		RedisURI:    getEnv("REDIS_URI", "redis://localhost:6379/0"),

		JWTSecret:       getEnv("SECRET_KEY_JWT", "your-secret-key-change-in-production"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		EmailTokenTTL:   getDuration("EMAIL_TOKEN_TTL", 24*time.Hour),

		Port:           getEnv("PORT", "8080"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:5500")),

		RateLimitRequests: getInt("RATE_LIMIT_REQUESTS", 10),
		RateLimitWindow:   getDuration("RATE_LIMIT_WINDOW", time.Minute),

		CloudinaryName:      getEnv("CLOUDINARY_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		MailServer:   getEnv("MAIL_SERVER", ""),
		MailPort:     getInt("MAIL_PORT", 465),
		MailUsername: getEnv("MAIL_USERNAME", ""),
		MailPassword: getEnv("MAIL_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),
	}
}

// MailConfigured reports whether enough SMTP settings are present to send.
func (c *Config) MailConfigured() bool {
	return c.MailServer != "" && c.MailFrom != ""
}

// CloudinaryConfigured reports whether avatar uploads can be initialized.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func parseOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
