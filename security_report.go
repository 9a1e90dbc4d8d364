package goGate

import (
	"net/http"
	"time"
)

// SecurityReport summarizes the security-relevant settings an engine runs with.
type SecurityReport struct {
	ProductionMode   bool
	SigningAlgorithm string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	Argon2           PasswordConfigReport
	LegacyBcrypt     bool
	AtomicRotation   bool
	SecureCookies    bool
	SameSiteStrict   bool
	LoginThrottle    bool
	SignupThrottle   bool
	AuditEnabled     bool
	LintWarningCodes []string
}

type PasswordConfigReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		ProductionMode:   e.config.Security.ProductionMode,
		SigningAlgorithm: "HS256",
		AccessTTL:        e.config.JWT.AccessTTL,
		RefreshTTL:       e.config.JWT.RefreshTTL,
		Argon2: PasswordConfigReport{
			Memory:      e.config.Password.Memory,
			Time:        e.config.Password.Time,
			Parallelism: e.config.Password.Parallelism,
			SaltLength:  e.config.Password.SaltLength,
			KeyLength:   e.config.Password.KeyLength,
		},
		LegacyBcrypt:     e.config.Password.AllowLegacyBcrypt,
		AtomicRotation:   e.config.Session.AtomicRotation,
		SecureCookies:    e.config.Cookie.Secure,
		SameSiteStrict:   e.config.Cookie.SameSite == http.SameSiteStrictMode,
		LoginThrottle:    e.rateLimiter != nil,
		SignupThrottle:   e.accountLimiter != nil,
		AuditEnabled:     e.audit != nil,
		LintWarningCodes: e.config.Lint().Codes(),
	}
}
