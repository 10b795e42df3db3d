// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// RedisURL is the Redis address or redis:// URL backing the login rate limiter.
	// Empty disables rate limiting (dev only).
	RedisURL string `mapstructure:"REDIS_URL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// SessionTTL is the session lifetime (e.g. "24h"). Expiry is fixed at login.
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// LoginRateLimit is the number of login attempts allowed per identifier per window.
	LoginRateLimit int `mapstructure:"LOGIN_RATE_LIMIT"`
	// LoginRateWindow is the rate-limit window (e.g. "1m").
	LoginRateWindow string `mapstructure:"LOGIN_RATE_WINDOW"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317).
	// Empty disables telemetry export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
	// SecureCookies marks session cookies Secure; disable only for local http.
	SecureCookies bool `mapstructure:"SECURE_COOKIES"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", "1m")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("SECURE_COOKIES", true)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.LoginRateLimit < 0 {
		return nil, errors.New("config: LOGIN_RATE_LIMIT must not be negative")
	}

	return &cfg, nil
}

// SessionTTLDuration parses SessionTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) SessionTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// LoginRateWindowDuration parses LoginRateWindow as a time.Duration. Returns 1m if unset or invalid.
func (c *Config) LoginRateWindowDuration() time.Duration {
	d, err := time.ParseDuration(c.LoginRateWindow)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}
