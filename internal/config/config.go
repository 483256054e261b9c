// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Uploads  UploadConfig
	Booking  BookingConfig
	Cache    CacheConfig
	Events   EventsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	// DataPath holds the embedded database, search index, key file and uploads.
	DataPath string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DatabaseConfig selects the store backend.
//
// URL forms:
//   - mongodb://... or mongodb+srv://... uses MongoDB
//   - sqlite://path uses SQLite
//   - empty uses the embedded Badger store under DataPath
type DatabaseConfig struct {
	URL  string
	Name string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
	// AuthRateLimit is requests per minute per client IP on /login and /register.
	AuthRateLimit int
	AuthRateBurst int
	// TrustProxyHeaders reads the client IP from X-Forwarded-For/X-Real-IP.
	TrustProxyHeaders bool
}

// AuthConfig holds token configuration.
type AuthConfig struct {
	// Secret signs tokens. Empty means a generated key file is used.
	Secret      string
	TokenFormat string
	// TokenTTL of zero issues tokens without expiry.
	TokenTTL time.Duration
}

// UploadConfig holds photo upload configuration.
type UploadConfig struct {
	Path     string
	MaxBytes int64
	MaxFiles int
}

// BookingConfig holds booking rules.
type BookingConfig struct {
	RejectOverlap bool
}

// CacheConfig holds place cache configuration.
type CacheConfig struct {
	Size          int64
	TTL           time.Duration
	MemcachedAddr string
}

// EventsConfig holds domain event publishing configuration.
type EventsConfig struct {
	AMQPURL  string
	Exchange string
}

// Token formats.
const (
	TokenFormatJWT    = "jwt"
	TokenFormatPaseto = "paseto"
)

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("staybook", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := fs.String("data-path", "", "Base path for local data")
	databaseURL := fs.String("database-url", "", "Database connection string")
	databaseName := fs.String("database-name", "", "Database name (MongoDB)")
	secret := fs.String("secret", "", "Token signing secret")
	tokenFormat := fs.String("token-format", "", "Token format (jwt, paseto)")
	tokenTTL := fs.String("token-ttl", "", "Token lifetime, 0 for no expiry (e.g., 24h)")
	serverPort := fs.String("port", "", "Server port (default: 4000)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins")
	uploadPath := fs.String("upload-path", "", "Directory for uploaded photos")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env is fine; godotenv.Load never overrides variables already set.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			DataPath:    getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:  getConfigValue(*databaseURL, "DATABASE_URL", os.Getenv("MONGO_URL")),
			Name: getConfigValue(*databaseName, "DATABASE_NAME", "staybook"),
		},
		Server: ServerConfig{
			Port:              getConfigValue(*serverPort, "SERVER_PORT", "4000"),
			CORSOrigins:       splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
			AuthRateLimit:     getIntConfigValue("", "AUTH_RATE_LIMIT", 20),
			AuthRateBurst:     getIntConfigValue("", "AUTH_RATE_BURST", 10),
			TrustProxyHeaders: getBoolConfigValue("", "TRUST_PROXY_HEADERS", false),
		},
		Auth: AuthConfig{
			Secret:      getConfigValue(*secret, "SECRET_TOKEN_KEY", ""),
			TokenFormat: strings.ToLower(getConfigValue(*tokenFormat, "AUTH_TOKEN_FORMAT", TokenFormatJWT)),
		},
		Uploads: UploadConfig{
			Path:     getConfigValue(*uploadPath, "UPLOAD_PATH", ""),
			MaxBytes: int64(getIntConfigValue("", "UPLOAD_MAX_BYTES", 100<<20)),
			MaxFiles: getIntConfigValue("", "UPLOAD_MAX_FILES", 100),
		},
		Booking: BookingConfig{
			RejectOverlap: getBoolConfigValue("", "BOOKING_REJECT_OVERLAP", false),
		},
		Cache: CacheConfig{
			Size:          int64(getIntConfigValue("", "CACHE_SIZE", 1000)),
			MemcachedAddr: getConfigValue("", "MEMCACHED_ADDR", ""),
		},
		Events: EventsConfig{
			AMQPURL:  getConfigValue("", "AMQP_URL", ""),
			Exchange: getConfigValue("", "AMQP_EXCHANGE", "staybook.events"),
		},
	}

	durations := []struct {
		dst          *time.Duration
		flagValue    string
		envKey       string
		defaultValue string
	}{
		{&cfg.Auth.TokenTTL, *tokenTTL, "TOKEN_TTL", "0"},
		{&cfg.Server.ReadTimeout, "", "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, "", "SERVER_WRITE_TIMEOUT", "15s"},
		{&cfg.Server.IdleTimeout, "", "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Cache.TTL, "", "CACHE_TTL", "5m"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.defaultValue)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Auth.TokenFormat != TokenFormatJWT && c.Auth.TokenFormat != TokenFormatPaseto {
		return fmt.Errorf("invalid token format: %s (must be jwt or paseto)", c.Auth.TokenFormat)
	}
	if c.Auth.TokenTTL < 0 {
		return errors.New("token ttl cannot be negative")
	}

	port, err := strconv.Atoi(c.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid port: %s", c.Server.Port)
	}

	if c.App.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}
	if c.Uploads.MaxFiles < 1 {
		return errors.New("upload max files must be at least 1")
	}

	if c.App.Environment == "production" && c.Auth.Secret == "" {
		return errors.New("SECRET_TOKEN_KEY is required in production")
	}

	return nil
}

// StoreKind reports which backend the database URL selects.
func (d DatabaseConfig) StoreKind() string {
	switch {
	case strings.HasPrefix(d.URL, "mongodb://"), strings.HasPrefix(d.URL, "mongodb+srv://"):
		return "mongo"
	case strings.HasPrefix(d.URL, "sqlite://"):
		return "sqlite"
	default:
		return "badger"
	}
}

// SQLitePath returns the file path of a sqlite:// URL.
func (d DatabaseConfig) SQLitePath() string {
	return strings.TrimPrefix(d.URL, "sqlite://")
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandPaths resolves DataPath (default ~/StayBook/data) and UploadPath
// (default {data}/uploads).
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dataPath, err := expandPath(c.App.DataPath, filepath.Join(homeDir, "StayBook", "data"))
	if err != nil {
		return err
	}
	c.App.DataPath = dataPath

	uploadPath, err := expandPath(c.Uploads.Path, filepath.Join(dataPath, "uploads"))
	if err != nil {
		return err
	}
	c.Uploads.Path = uploadPath

	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// splitList splits a comma separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
