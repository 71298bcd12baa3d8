// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development, with one
// deliberate exception: the session signing secret has no default and must
// be set in every environment.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for password reset links.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Auth holds authentication-related settings.
	Auth AuthConfig

	// Mail holds SMTP settings for outbound reset mail.
	Mail MailConfig

	// Assist holds chat assistant and translation proxy settings.
	Assist AssistConfig

	// SchemesJSONPath is the on-disk scheme catalog used as a fallback
	// when the database is unreachable or empty.
	SchemesJSONPath string
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields
// (Host, User, Password, Name) are read from separate env vars so container
// orchestrators can manage each independently. If DATABASE_URL is set, it
// takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	// User is the MariaDB username (default: "yojanahub").
	User string

	// Password is the MariaDB password (default: "yojanahub").
	Password string

	// Name is the database name (default: "yojanahub").
	Name string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	// MaxOpenConns is the maximum number of open connections in the pool.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// ConnMaxLifetime is how long a connection can be reused.
	ConnMaxLifetime time.Duration
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// Host/User/Password/Name fields using the driver's Config.FormatDSN()
// to safely handle special characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
// Allows users to set DB_HOST=mydb (gets :3306) or DB_HOST=mydb:3307 (as-is).
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// SecretKey signs session tokens. Required, minimum 32 bytes, in every
	// environment. There is intentionally no development fallback: a process
	// that would sign tokens with a known key must not start.
	SecretKey string

	// SessionTTL is how long session tokens (and their cookie) last.
	SessionTTL time.Duration

	// ResetTokenTTL is how long a password reset secret stays valid.
	ResetTokenTTL time.Duration
}

// MailConfig holds SMTP settings for the reset-password mail. When Host is
// empty, mail delivery is disabled and the forgot-password flow degrades to
// storing the token without sending anything.
type MailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string

	// Encryption is "starttls", "ssl", or "none".
	Encryption string
}

// Enabled returns true if SMTP delivery is configured.
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

// AssistConfig holds settings for the chat assistant and translation proxy.
type AssistConfig struct {
	// CompletionAPIKey authorizes calls to the hosted completion endpoint.
	// Empty means the assistant runs in keyword-matching mode only.
	CompletionAPIKey string

	// CompletionBaseURL is the OpenAI-compatible API root.
	CompletionBaseURL string

	// CompletionModel is the chat model name.
	CompletionModel string

	// CompletionTimeout bounds a single upstream completion call.
	CompletionTimeout time.Duration

	// TranslateBaseURL is the hosted translation endpoint root.
	TranslateBaseURL string

	// TranslateTimeout bounds a single upstream translation call.
	TranslateTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "yojanahub"),
			Password:        getEnv("DB_PASSWORD", "yojanahub"),
			Name:            getEnv("DB_NAME", "yojanahub"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Auth: AuthConfig{
			SecretKey:     getEnv("SECRET_KEY", ""),
			SessionTTL:    getEnvDuration("SESSION_TTL", 168*time.Hour),
			ResetTokenTTL: getEnvDuration("RESET_TOKEN_TTL", time.Hour),
		},

		Mail: MailConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvInt("SMTP_PORT", 587),
			Username:    getEnv("SMTP_USERNAME", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			FromAddress: getEnv("SMTP_FROM_ADDRESS", "no-reply@yojanahub.in"),
			FromName:    getEnv("SMTP_FROM_NAME", "YojanaHub"),
			Encryption:  getEnv("SMTP_ENCRYPTION", "starttls"),
		},

		Assist: AssistConfig{
			CompletionAPIKey:  getEnv("COMPLETION_API_KEY", ""),
			CompletionBaseURL: getEnv("COMPLETION_BASE_URL", "https://api.openai.com/v1"),
			CompletionModel:   getEnv("COMPLETION_MODEL", "gpt-4o-mini"),
			CompletionTimeout: getEnvDuration("COMPLETION_TIMEOUT", 30*time.Second),
			TranslateBaseURL:  getEnv("TRANSLATE_BASE_URL", "https://api.mymemory.translated.net"),
			TranslateTimeout:  getEnvDuration("TRANSLATE_TIMEOUT", 10*time.Second),
		},

		SchemesJSONPath: getEnv("SCHEMES_JSON_PATH", "./data/schemes.json"),
	}

	// The signing secret is required everywhere. Session tokens signed with
	// a published default would be forgeable by anyone who read the source.
	if cfg.Auth.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}
	if len(cfg.Auth.SecretKey) < 32 {
		return nil, fmt.Errorf("SECRET_KEY must be at least 32 characters")
	}

	if cfg.Auth.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.Auth.ResetTokenTTL <= 0 {
		return nil, fmt.Errorf("RESET_TOKEN_TTL must be positive")
	}

	switch cfg.Mail.Encryption {
	case "starttls", "ssl", "none":
	default:
		return nil, fmt.Errorf("SMTP_ENCRYPTION must be starttls, ssl, or none")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "168h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
