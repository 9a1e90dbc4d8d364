// Package config loads gateway process settings from the environment and an
// optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/spf13/viper"
)

// MemoryRedisHost selects an in-process miniredis instead of a Redis server.
const MemoryRedisHost = "memory"

// Config holds process configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the gateway listens on (e.g. :3000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	// AuthTokenSecret signs access tokens.
	AuthTokenSecret string `mapstructure:"AUTH_TOKEN_SECRET"`
	// RefreshTokenSecret signs refresh tokens. Must differ from AuthTokenSecret.
	RefreshTokenSecret string `mapstructure:"REFRESH_TOKEN_SECRET"`
	// AuthTokenTTL is the access token lifetime (e.g. "15m").
	AuthTokenTTL string `mapstructure:"AUTH_TOKEN_TTL"`
	// RefreshTokenTTL is the refresh token lifetime (e.g. "1440m").
	RefreshTokenTTL string `mapstructure:"REFRESH_TOKEN_TTL"`
	// TokenIssuer is the iss claim; empty disables the check.
	TokenIssuer string `mapstructure:"TOKEN_ISSUER"`

	// RedisHost is the Redis hostname, or "memory" for an embedded server.
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     int    `mapstructure:"REDIS_PORT"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// DatabaseURL is the Postgres DSN. Empty selects the in-memory directory.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	SessionAtomicRotation bool `mapstructure:"SESSION_ATOMIC_ROTATION"`
	CookieSecure          bool `mapstructure:"COOKIE_SECURE"`
	AuditEnabled          bool `mapstructure:"AUDIT_ENABLED"`
	MetricsEnabled        bool `mapstructure:"METRICS_ENABLED"`
	// OTLPEndpoint is the OTLP gRPC collector for engine metrics. Empty
	// disables the push; /metrics is served either way.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// MetricExportInterval is the OTLP push period (e.g. "10s").
	MetricExportInterval string `mapstructure:"OTEL_METRIC_EXPORT_INTERVAL"`

	// BcryptLegacy accepts bcrypt password hashes created before argon2id.
	BcryptLegacy bool `mapstructure:"BCRYPT_LEGACY"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// Env is the application environment; "production" turns on the engine's
	// production checks.
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment.
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file path. A missing file is ignored;
// environment variables override values from the file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		_ = v.ReadInConfig()
	}

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("AUTH_TOKEN_SECRET", "")
	v.SetDefault("REFRESH_TOKEN_SECRET", "")
	v.SetDefault("AUTH_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "1440m")
	v.SetDefault("TOKEN_ISSUER", "")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_ATOMIC_ROTATION", true)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("AUDIT_ENABLED", false)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_METRIC_EXPORT_INTERVAL", "10s")
	v.SetDefault("BCRYPT_LEGACY", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.AuthTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, errors.New("config: AUTH_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	if cfg.AuthTokenSecret == cfg.RefreshTokenSecret {
		return nil, errors.New("config: AUTH_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if _, err := parseTTL(cfg.AuthTokenTTL); err != nil {
		return nil, fmt.Errorf("config: AUTH_TOKEN_TTL: %w", err)
	}
	if _, err := parseTTL(cfg.RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("config: REFRESH_TOKEN_TTL: %w", err)
	}
	if _, err := parseTTL(cfg.MetricExportInterval); err != nil {
		return nil, fmt.Errorf("config: OTEL_METRIC_EXPORT_INTERVAL: %w", err)
	}
	if cfg.RedisPort <= 0 || cfg.RedisPort > 65535 {
		return nil, errors.New("config: REDIS_PORT must be between 1 and 65535")
	}
	if cfg.Production() && cfg.RedisHost == MemoryRedisHost {
		return nil, errors.New("config: REDIS_HOST=memory is not allowed when APP_ENV=production")
	}

	return &cfg, nil
}

func parseTTL(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be positive")
	}
	return d, nil
}

// AccessTTL parses AuthTokenTTL. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := parseTTL(c.AuthTokenTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses RefreshTokenTTL. Returns 1440m if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := parseTTL(c.RefreshTokenTTL)
	if err != nil {
		return 1440 * time.Minute
	}
	return d
}

// ExportInterval parses MetricExportInterval. Returns 10s if unset or invalid.
func (c *Config) ExportInterval() time.Duration {
	d, err := parseTTL(c.MetricExportInterval)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// Production reports whether APP_ENV is production.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// InMemoryRedis reports whether the gateway should run an embedded Redis.
func (c *Config) InMemoryRedis() bool {
	return c.RedisHost == MemoryRedisHost
}

// RedisAddr returns host:port for the Redis client.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + strconv.Itoa(c.RedisPort)
}

// SlogLevel maps LogLevel to a slog level, defaulting to Info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EngineConfig maps process settings onto a goGate.Config.
func (c *Config) EngineConfig() goGate.Config {
	cfg := goGate.DefaultConfig()
	cfg.JWT.AccessSecret = []byte(c.AuthTokenSecret)
	cfg.JWT.RefreshSecret = []byte(c.RefreshTokenSecret)
	cfg.JWT.AccessTTL = c.AccessTTL()
	cfg.JWT.RefreshTTL = c.RefreshTTL()
	cfg.JWT.Issuer = c.TokenIssuer
	cfg.Session.AtomicRotation = c.SessionAtomicRotation
	cfg.Cookie.Secure = c.CookieSecure
	cfg.Password.AllowLegacyBcrypt = c.BcryptLegacy
	cfg.Audit.Enabled = c.AuditEnabled
	cfg.Metrics.Enabled = c.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = c.MetricsEnabled
	cfg.Security.ProductionMode = c.Production()
	return cfg
}
