package jwt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid is returned when a token fails signature, algorithm, or structure checks.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when a token verifies but its exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")
)

// Config holds the signing material and lifetimes for both credentials.
//
// AccessSecret and RefreshSecret must be distinct; a token signed with one never
// verifies under the other.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration

	// Now overrides the clock used for issuance and verification. Nil means time.Now.
	Now func() time.Time
}

// Manager creates and verifies the access/refresh credential pair.
//
// Manager is immutable after NewManager and safe for concurrent use.
type Manager struct {
	config Config
}

// Claims is the payload carried by both credentials. For an access credential
// Subject is the user id; for a refresh credential Subject is the exact access
// token string it was issued alongside.
type Claims struct {
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 {
		return nil, errors.New("access secret required")
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("refresh secret required")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL must not be shorter than access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	cfg.Issuer = strings.TrimSpace(cfg.Issuer)
	cfg.AccessSecret = append([]byte(nil), cfg.AccessSecret...)
	cfg.RefreshSecret = append([]byte(nil), cfg.RefreshSecret...)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{config: cfg}, nil
}

// AccessTTL returns the configured access credential lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.config.AccessTTL }

// RefreshTTL returns the configured refresh credential lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.config.RefreshTTL }

// Now returns the manager's current time.
func (m *Manager) Now() time.Time { return m.config.Now() }

// CreateAccess signs an access credential whose subject is userID.
func (m *Manager) CreateAccess(userID string) (string, error) {
	return m.sign(userID, m.config.AccessSecret, m.config.AccessTTL)
}

// CreateRefresh signs a refresh credential bound to pairedAccess, the exact
// access token string issued in the same pair.
func (m *Manager) CreateRefresh(pairedAccess string) (string, error) {
	return m.sign(pairedAccess, m.config.RefreshSecret, m.config.RefreshTTL)
}

// ParseAccess verifies an access credential. With ignoreExpiration set the
// exp claim is not enforced, which lets callers tell a forged token apart from
// one that merely aged out; exp must still be present.
func (m *Manager) ParseAccess(tokenStr string, ignoreExpiration bool) (*Claims, error) {
	return m.parse(tokenStr, m.config.AccessSecret, ignoreExpiration)
}

// ParseRefresh verifies a refresh credential, enforcing both signature and expiry.
func (m *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, m.config.RefreshSecret, false)
}

// Expired reports whether claims have reached their exp instant.
func (m *Manager) Expired(claims *Claims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.Time.After(m.config.Now())
}

func (m *Manager) sign(subject string, secret []byte, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject required")
	}

	now := m.config.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (m *Manager) parse(tokenStr string, secret []byte, ignoreExpiration bool) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrTokenInvalid
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.config.Now),
	}
	if ignoreExpiration {
		options = append(options, jwt.WithoutClaimsValidation())
	} else {
		options = append(options, jwt.WithExpirationRequired())
		if m.config.Leeway > 0 {
			options = append(options, jwt.WithLeeway(m.config.Leeway))
		}
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing sub or exp", ErrTokenInvalid)
	}
	if m.config.Issuer != "" && claims.Issuer != m.config.Issuer {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
	}

	return claims, nil
}
