// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"txledger/pkg/db" // Import db package for its Config struct
)

// minSecretLength is the shortest JWT_SECRET accepted outside debug mode.
const minSecretLength = 32

// AppConfig holds all application-wide configurations.
// It is built once at startup and never mutated afterwards.
type AppConfig struct {
	ServerPort     string
	Debug          bool
	LogLevel       string
	AllowedOrigins []string
	RequestTimeout time.Duration
	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool

	DB          db.Config
	AutoMigrate bool

	Auth       AuthConfig
	Pagination PaginationConfig
	RateLimit  RateLimitConfig
}

// AuthConfig holds password hashing and token signing settings.
type AuthConfig struct {
	JWTSecret       string
	JWTAlgorithm    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	BcryptCost      int
}

// PaginationConfig bounds list page sizes.
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// RateLimitConfig throttles requests per client address.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first when present;
// variables already set in the environment take precedence over it.
// It returns an AppConfig instance or an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds an AppConfig from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (*AppConfig, error) {
	l := loader{lookup: lookup}

	cfg := &AppConfig{
		ServerPort:        l.str("SERVER_PORT", "8080"),
		Debug:             l.boolean("DEBUG", false),
		LogLevel:          l.str("LOG_LEVEL", "info"),
		AllowedOrigins:    l.list("ALLOWED_ORIGINS", []string{"*"}),
		RequestTimeout:    l.duration("REQUEST_TIMEOUT", 10*time.Second),
		TrustProxyHeaders: l.boolean("TRUST_PROXY_HEADERS", false),
		DB: db.Config{
			Host:     l.str("DB_HOST", "localhost"),
			Port:     l.integer("DB_PORT", 5432),
			User:     l.str("DB_USER", "user"),
			Password: l.str("DB_PASSWORD", "password"),
			DBName:   l.str("DB_NAME", "ledgerdb"),
			SSLMode:  l.str("DB_SSLMODE", "disable"),
		},
		AutoMigrate: l.boolean("DB_AUTO_MIGRATE", false),
		Auth: AuthConfig{
			JWTSecret:       l.str("JWT_SECRET", ""),
			JWTAlgorithm:    l.str("JWT_ALGORITHM", "HS256"),
			AccessTokenTTL:  time.Duration(l.integer("ACCESS_TOKEN_EXPIRE_MINUTES", 15)) * time.Minute,
			RefreshTokenTTL: time.Duration(l.integer("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,
			BcryptCost:      l.integer("BCRYPT_COST", 12),
		},
		Pagination: PaginationConfig{
			DefaultPageSize: l.integer("DEFAULT_PAGE_SIZE", 20),
			MaxPageSize:     l.integer("MAX_PAGE_SIZE", 100),
		},
		RateLimit: RateLimitConfig{
			Requests: l.integer("RATE_LIMIT_REQUESTS", 100),
			Window:   l.duration("RATE_LIMIT_WINDOW", time.Minute),
		},
	}

	if len(l.errs) > 0 {
		return nil, errors.Join(l.errs...)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	var errs []error

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.Auth.JWTSecret) < minSecretLength && !c.Debug {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength))
	}
	switch c.Auth.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, fmt.Errorf("unsupported JWT_ALGORITHM %q", c.Auth.JWTAlgorithm))
	}
	if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	// bcrypt accepts costs 4..31
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}
	if c.Pagination.DefaultPageSize < 1 || c.Pagination.MaxPageSize < c.Pagination.DefaultPageSize {
		errs = append(errs, errors.New("page sizes must satisfy 1 <= DEFAULT_PAGE_SIZE <= MAX_PAGE_SIZE"))
	}
	// RATE_LIMIT_REQUESTS=0 turns the limiter off.
	if c.RateLimit.Requests < 0 || (c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0) {
		errs = append(errs, errors.New("rate limit must be 0 (disabled) or allow requests per positive window"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// loader reads typed values and collects parse errors.
type loader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (l *loader) str(key, def string) string {
	if v, ok := l.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (l *loader) integer(key string, def int) int {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func (l *loader) boolean(key string, def bool) bool {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func (l *loader) duration(key string, def time.Duration) time.Duration {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("invalid %s: %w", key, err))
		return def
	}
	return v
}

func (l *loader) list(key string, def []string) []string {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
