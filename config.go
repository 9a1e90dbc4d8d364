package goGate

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Config is the complete engine configuration. Start from [DefaultConfig] and
// override fields; [Builder.Build] validates it and keeps a private copy.
type Config struct {
	JWT      JWTConfig
	Session  SessionConfig
	Cookie   CookieConfig
	Password PasswordConfig
	Account  AccountConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig holds the two signing secrets and credential lifetimes.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the refresh record store.
type SessionConfig struct {
	RedisPrefix string

	// AtomicRotation swaps the stored refresh token with a single
	// compare-and-swap script. When false the resolver performs a plain
	// get, compare and set, and two concurrent refreshes with the same
	// token may both succeed.
	AtomicRotation bool
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig describes the two credential cookies.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	Path        string
	Domain      string
	Secure      bool
	SameSite    http.SameSite
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds argon2id parameters and legacy hash handling.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool

	// AllowLegacyBcrypt accepts bcrypt hashes at login. Combined with
	// UpgradeOnLogin they are replaced by argon2id on the first success.
	AllowLegacyBcrypt bool
}

// AccountConfig controls signup.
type AccountConfig struct {
	Enabled                  bool
	AutoLogin                bool
	EnableIPThrottle         bool
	EnableIdentifierThrottle bool
	MaxAttempts              int
	Cooldown                 time.Duration
}

// SecurityConfig controls login throttling and production guard rails.
type SecurityConfig struct {
	ProductionMode        bool
	EnableLoginThrottle   bool
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration. Secrets are left empty
// and must be supplied before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 1440 * time.Minute,
		},
		Session: SessionConfig{
			RedisPrefix:    "refresh_token",
			AtomicRotation: true,
		},
		Cookie: CookieConfig{
			AccessName:  "authToken",
			RefreshName: "refreshToken",
			Path:        "/",
			Secure:      true,
			SameSite:    http.SameSiteStrictMode,
		},
		Password: PasswordConfig{
			Memory:            65536,
			Time:              3,
			Parallelism:       2,
			SaltLength:        16,
			KeyLength:         32,
			UpgradeOnLogin:    true,
			AllowLegacyBcrypt: true,
		},
		Account: AccountConfig{
			Enabled:                  true,
			AutoLogin:                false,
			EnableIPThrottle:         true,
			EnableIdentifierThrottle: true,
			MaxAttempts:              5,
			Cooldown:                 15 * time.Minute,
		},
		Security: SecurityConfig{
			ProductionMode:        false,
			EnableLoginThrottle:   true,
			EnableIPThrottle:      false,
			MaxLoginAttempts:      5,
			LoginCooldownDuration: 15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	// JWT
	if len(c.JWT.AccessSecret) == 0 {
		return errors.New("JWT AccessSecret is required")
	}
	if len(c.JWT.RefreshSecret) == 0 {
		return errors.New("JWT RefreshSecret is required")
	}
	if bytes.Equal(c.JWT.AccessSecret, c.JWT.RefreshSecret) {
		return errors.New("JWT AccessSecret and RefreshSecret must differ")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must be >= AccessTTL")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	// Session
	if strings.TrimSpace(c.Session.RedisPrefix) == "" {
		return errors.New("Session RedisPrefix is required")
	}

	// Cookie
	if c.Cookie.AccessName == "" || c.Cookie.RefreshName == "" {
		return errors.New("Cookie names are required")
	}
	if c.Cookie.AccessName == c.Cookie.RefreshName {
		return errors.New("Cookie AccessName and RefreshName must differ")
	}
	if c.Cookie.SameSite == http.SameSiteNoneMode && !c.Cookie.Secure {
		return errors.New("Cookie SameSite=None requires Secure")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Account
	if c.Account.Enabled && (c.Account.EnableIPThrottle || c.Account.EnableIdentifierThrottle) {
		if c.Account.MaxAttempts <= 0 {
			return errors.New("Account MaxAttempts must be > 0 when throttling is enabled")
		}
		if c.Account.Cooldown <= 0 {
			return errors.New("Account Cooldown must be > 0 when throttling is enabled")
		}
	}

	// Security
	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts <= 0 {
			return errors.New("Security MaxLoginAttempts must be > 0")
		}
		if c.Security.LoginCooldownDuration <= 0 {
			return errors.New("Security LoginCooldownDuration must be > 0")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	if c.Security.ProductionMode {
		if len(c.JWT.AccessSecret) < 32 || len(c.JWT.RefreshSecret) < 32 {
			return errors.New("ProductionMode requires JWT secrets of at least 256 bits")
		}
		if c.JWT.AccessTTL > 15*time.Minute {
			return errors.New("ProductionMode requires JWT AccessTTL <= 15m")
		}
		if c.JWT.RefreshTTL > 30*24*time.Hour {
			return errors.New("ProductionMode requires JWT RefreshTTL <= 30d")
		}
		if !c.Cookie.Secure {
			return errors.New("ProductionMode requires Secure cookies")
		}
		if !c.Session.AtomicRotation {
			return errors.New("ProductionMode requires Session AtomicRotation")
		}
		if c.Password.Memory < 64*1024 {
			return errors.New("ProductionMode requires Password Memory >= 65536 KB")
		}
		if c.Password.Time < 2 {
			return errors.New("ProductionMode requires Password Time >= 2")
		}
	}

	return nil
}

// LintWarning is a configuration that is valid but probably unintended.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of [Config.Lint].
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports settings that weaken the gateway without making it unusable.
// Build logs each warning; it never fails on them.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings

	if !c.Session.AtomicRotation {
		ws = append(ws, LintWarning{
			Code:    "non_atomic_rotation",
			Message: "concurrent refreshes with one token may both rotate",
		})
	}
	if !c.Cookie.Secure {
		ws = append(ws, LintWarning{
			Code:    "insecure_cookies",
			Message: "credential cookies are sent over plain HTTP",
		})
	}
	if c.Cookie.SameSite != http.SameSiteStrictMode {
		ws = append(ws, LintWarning{
			Code:    "samesite_not_strict",
			Message: "credential cookies are sent on cross-site requests",
		})
	}
	if c.JWT.AccessTTL > 15*time.Minute {
		ws = append(ws, LintWarning{
			Code:    "access_ttl_long",
			Message: "access tokens outlive the 15m rotation window",
		})
	}
	if c.JWT.Leeway > time.Minute {
		ws = append(ws, LintWarning{
			Code:    "leeway_large",
			Message: "expiry leeway above 1m",
		})
	}
	if !c.Security.EnableLoginThrottle {
		ws = append(ws, LintWarning{
			Code:    "login_throttle_disabled",
			Message: "failed logins are not rate limited",
		})
	}

	return ws
}
