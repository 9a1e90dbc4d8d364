package goGate

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goGate/internal/flows"
)

// Login verifies email and password and issues the user's first credential
// pair, replacing any refresh token previously on record.
//
// An unknown email and a wrong password both return [ErrInvalidCredentials].
// A suspended account with a correct password returns [ErrAccountSuspended]
// and no pair is issued.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if e == nil || e.directory == nil || e.passwordHash == nil || e.jwtManager == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}

	var found *UserRecord
	res := flows.RunLogin(ctx, flows.LoginInput{Email: email, Password: password}, flows.LoginDeps{
		UpgradeOnLogin:      e.config.Password.UpgradeOnLogin,
		ClientIPFromContext: clientIPFromContext,
		FindByEmail: func(ctx context.Context, email string) (*flows.LoginAccount, error) {
			user, err := e.directory.FindByEmail(ctx, email)
			if err != nil || user == nil {
				return nil, err
			}
			found = user
			state := flows.UserActive
			if user.Status == AccountSuspended {
				state = flows.UserSuspended
			}
			return &flows.LoginAccount{
				ID:           user.ID,
				PasswordHash: user.PasswordHash,
				State:        state,
			}, nil
		},
		VerifyPassword: e.passwordHash.Verify,
		HashPassword:   e.passwordHash.Hash,
		UpdatePasswordHash: func(ctx context.Context, userID, encoded string) error {
			if err := e.directory.UpdatePasswordHash(ctx, userID, encoded); err != nil {
				return err
			}
			e.metricInc(MetricPasswordRehash)
			return nil
		},
		Warn:        e.warn,
		RateLimiter: e.rateLimiter,
		Tokens:      e.jwtManager,
		Store:       e.sessionStore,
	})

	if res.Failure != flows.LoginFailureNone {
		err := loginFailureError(res)
		switch res.Failure {
		case flows.LoginFailureRateLimited:
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", StatusNone, err, nil)
		case flows.LoginFailureSuspended:
			e.metricInc(MetricLoginSuspended)
			e.emitAudit(ctx, auditEventLoginFailure, false, res.UserID, StatusNone, err, nil)
		default:
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, res.UserID, StatusNone, err, nil)
		}
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, res.UserID, StatusNone, nil, nil)

	out := &LoginResult{
		Tokens: *e.tokenPair(res.AccessToken, res.RefreshToken),
	}
	if found != nil {
		out.User = *found
		out.User.PasswordHash = ""
	}
	return out, nil
}

func loginFailureError(res flows.LoginResult) error {
	switch res.Failure {
	case flows.LoginFailureInvalidRequest:
		return fmt.Errorf("%w: %v", ErrLoginInvalid, res.Err)
	case flows.LoginFailureRateLimited:
		return ErrLoginRateLimited
	case flows.LoginFailureInvalidCredentials:
		return ErrInvalidCredentials
	case flows.LoginFailureSuspended:
		return ErrAccountSuspended
	default:
		return dependencyError(res.Err)
	}
}
