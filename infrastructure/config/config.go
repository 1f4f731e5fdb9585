package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Development-only signing secrets. Load refuses them when ENV=production.
const (
	fallbackAccessTokenSecret  = "dev-access-token-secret-change-me"
	fallbackRefreshTokenSecret = "dev-refresh-token-secret-change-me"
)

type Config struct {
	DatabaseURL        string
	AccessTokenSecret  string
	RefreshTokenSecret string
	JWTAlgorithm       string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	ServerPort         string
	ServerHost         string
	Environment        string

	RedisURL                 string
	RateLimitEnabled         bool
	RateLimitRefreshAttempts int
	RateLimitRefreshWindow   time.Duration
	RateLimitLookupAttempts  int
	RateLimitLookupWindow    time.Duration
	RateLimitBlockDuration   time.Duration
	// Peers (IPs or CIDRs) whose X-Forwarded-For / X-Real-IP are believed.
	// Empty means the rate limiter keys on the TCP peer only.
	RateLimitTrustedProxies []string

	LogLevel  string
	LogFormat string

	// CORS configuration
	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
}

var (
	ErrMissingDatabaseURL  = errors.New("DATABASE_URL is required")
	ErrInvalidTokenTTL     = errors.New("invalid token TTL format")
	ErrInvalidJWTAlgorithm = errors.New("invalid JWT algorithm")
	ErrSharedSecrets       = errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	ErrInsecureSecrets     = errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set in production")
	ErrInvalidTrustedProxy = errors.New("invalid RATE_LIMIT_TRUSTED_PROXIES entry")
)

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		AccessTokenSecret:  getEnvOrDefault("ACCESS_TOKEN_SECRET", fallbackAccessTokenSecret),
		RefreshTokenSecret: getEnvOrDefault("REFRESH_TOKEN_SECRET", fallbackRefreshTokenSecret),
		JWTAlgorithm:       getEnvOrDefault("JWT_ALG", "HS256"),
		ServerPort:         getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:         getEnvOrDefault("SERVER_HOST", "localhost"),
		Environment:        getEnvOrDefault("ENV", "development"),
		RedisURL:           getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled:   getEnvOrDefaultBool("RATE_LIMIT_ENABLED", true),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          getEnvOrDefault("LOG_FORMAT", "json"),

		RateLimitRefreshAttempts: getEnvOrDefaultInt("RATE_LIMIT_REFRESH_ATTEMPTS", 30),
		RateLimitLookupAttempts:  getEnvOrDefaultInt("RATE_LIMIT_LOOKUP_ATTEMPTS", 10),
		RateLimitTrustedProxies:  parseList(getEnvOrDefault("RATE_LIMIT_TRUSTED_PROXIES", "")),

		CORSEnabled:          getEnvOrDefaultBool("CORS_ENABLED", true),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   parseList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),
	}

	if err := cfg.parseDurations(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) parseDurations() error {
	durations := []struct {
		key      string
		fallback string
		target   *time.Duration
	}{
		{"JWT_ACCESS_TOKEN_TTL", "900", &c.AccessTokenTTL},
		{"JWT_REFRESH_TOKEN_TTL", "604800", &c.RefreshTokenTTL},
		{"RATE_LIMIT_REFRESH_WINDOW", "3600", &c.RateLimitRefreshWindow},
		{"RATE_LIMIT_LOOKUP_WINDOW", "900", &c.RateLimitLookupWindow},
		{"RATE_LIMIT_BLOCK_DURATION", "1800", &c.RateLimitBlockDuration},
	}

	for _, d := range durations {
		parsed, err := parseTokenTTL(getEnvOrDefault(d.key, d.fallback))
		if err != nil || parsed <= 0 {
			return ErrInvalidTokenTTL
		}
		*d.target = parsed
	}
	return nil
}

// Validate checks the invariants Load enforces. It is exported so callers
// building a Config by hand (tests, tools) get the same guarantees.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}

	if c.JWTAlgorithm != "HS256" {
		return ErrInvalidJWTAlgorithm
	}

	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return ErrInvalidTokenTTL
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return ErrSharedSecrets
	}

	if c.IsProduction() && c.UsingFallbackSecrets() {
		return ErrInsecureSecrets
	}

	for _, entry := range c.RateLimitTrustedProxies {
		if net.ParseIP(entry) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(entry); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTrustedProxy, entry)
		}
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// UsingFallbackSecrets reports whether either signing secret is a built-in default.
func (c *Config) UsingFallbackSecrets() bool {
	return c.AccessTokenSecret == fallbackAccessTokenSecret ||
		c.RefreshTokenSecret == fallbackRefreshTokenSecret
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func parseTokenTTL(value string) (time.Duration, error) {
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func parseList(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
