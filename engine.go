package goGate

import (
	"context"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/flows"
	"github.com/MrEthical07/goGate/internal/limiters"
	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/password"
	"github.com/MrEthical07/goGate/session"
	"github.com/redis/go-redis/v9"
)

// Engine resolves request credentials and runs the login, signup and
// logout flows. It is safe for concurrent use once built.
type Engine struct {
	config         Config
	jwtManager     *jwt.Manager
	sessionStore   *session.Store
	redis          redis.UniversalClient
	directory      UserDirectory
	passwordHash   *password.Hasher
	rateLimiter    *rate.Limiter
	accountLimiter *limiters.AccountCreationLimiter
	audit          *internalaudit.Dispatcher
	metrics        *Metrics
	logger         *slog.Logger
}

// Close flushes buffered audit events and stops the dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped on a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns the current counter values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// CookieConfig returns the configured credential cookie attributes.
func (e *Engine) CookieConfig() CookieConfig {
	if e == nil {
		return defaultConfig().Cookie
	}
	return e.config.Cookie
}

// TokenTTLs returns the access and refresh credential lifetimes.
func (e *Engine) TokenTTLs() (access, refresh time.Duration) {
	if e == nil || e.jwtManager == nil {
		return 0, 0
	}
	return e.jwtManager.AccessTTL(), e.jwtManager.RefreshTTL()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Resolve classifies the credential pair presented on one request.
//
// The returned AuthContext always carries exactly one status. When the access
// token had expired and the pair was rotated, the new tokens are returned and
// AuthContext.SetNewTokens is true; otherwise the pair is nil. A non-nil error
// matches ErrDependencyUnavailable and no status is assigned.
func (e *Engine) Resolve(ctx context.Context, accessToken, refreshToken string) (AuthContext, *TokenPair, error) {
	if e == nil || e.jwtManager == nil || e.sessionStore == nil || e.directory == nil {
		return AuthContext{AuthStatus: StatusNone}, nil, ErrEngineNotReady
	}

	var start time.Time
	if e.metrics.LatencyEnabled() {
		start = time.Now()
	}

	res, err := flows.RunResolve(ctx, accessToken, refreshToken, flows.ResolveDeps{
		Tokens:         e.jwtManager,
		Store:          e.sessionStore,
		LookupUser:     e.lookupUserState,
		AtomicRotation: e.config.Session.AtomicRotation,
	})

	if !start.IsZero() {
		e.metrics.Observe(MetricResolveLatency, time.Since(start))
	}

	if err != nil {
		e.metricInc(MetricResolveDependencyFailure)
		return AuthContext{AuthStatus: StatusNone}, nil, dependencyError(err)
	}

	ac := AuthContext{}
	var pair *TokenPair

	switch res.Outcome {
	case flows.ResolveMissingToken:
		ac = verdict(StatusMissingToken, msgMissingToken)
	case flows.ResolveInvalidAccess:
		ac = verdict(StatusInvalidAuthToken, msgInvalidAuthToken)
	case flows.ResolveAuthenticated:
		ac = verdict(StatusAuthenticated, msgAuthenticated)
		ac.UserID = res.UserID
	case flows.ResolveInvalidRefresh:
		ac = verdict(StatusInvalidRefreshToken, msgInvalidRefreshToken)
	case flows.ResolveMismatch:
		ac = verdict(StatusAuthRefreshMismatch, msgAuthRefreshMismatch)
	case flows.ResolveReused:
		ac = verdict(StatusRefreshTokenReused, msgRefreshTokenReused)
		e.emitAudit(ctx, auditEventRefreshReuseDetected, false, res.UserID, ac.AuthStatus, nil, func() map[string]string {
			return map[string]string{"reason": res.Reason}
		})
	case flows.ResolveUserNotFound:
		ac = verdict(StatusUserNotFound, msgUserNotFound)
		e.emitAudit(ctx, auditEventResolveUserNotFound, false, res.UserID, ac.AuthStatus, nil, nil)
	case flows.ResolveUserSuspended:
		ac = verdict(StatusUserSuspended, msgUserSuspended)
		e.emitAudit(ctx, auditEventResolveUserSuspended, false, res.UserID, ac.AuthStatus, nil, nil)
	case flows.ResolveRotated:
		ac = verdict(StatusAuthenticated, msgAuthenticated)
		ac.UserID = res.UserID
		ac.SetNewTokens = true
		pair = e.tokenPair(res.AccessToken, res.RefreshToken)
		e.metricInc(MetricResolveRotated)
		e.emitAudit(ctx, auditEventResolveRotated, true, res.UserID, ac.AuthStatus, nil, nil)
	default:
		return AuthContext{AuthStatus: StatusNone}, nil, ErrEngineNotReady
	}

	if id, ok := statusMetric[ac.AuthStatus]; ok {
		e.metricInc(id)
	}

	return ac, pair, nil
}

func verdict(status AuthStatus, message string) AuthContext {
	return AuthContext{AuthStatus: status, Message: message}
}

func (e *Engine) tokenPair(access, refresh string) *TokenPair {
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    e.jwtManager.AccessTTL(),
		RefreshTTL:   e.jwtManager.RefreshTTL(),
	}
}

func (e *Engine) lookupUserState(ctx context.Context, userID string) (flows.UserState, error) {
	user, err := e.directory.FindByID(ctx, userID)
	if err != nil {
		return flows.UserMissing, err
	}
	if user == nil {
		return flows.UserMissing, nil
	}
	if user.Status == AccountSuspended {
		return flows.UserSuspended, nil
	}
	return flows.UserActive, nil
}

func (e *Engine) warn(msg string, args ...any) {
	if e == nil || e.logger == nil {
		return
	}
	e.logger.Warn(msg, args...)
}
