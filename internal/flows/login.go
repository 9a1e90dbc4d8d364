package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goGate/internal/rate"
)

// LoginFailureKind classifies login failures for root-level mapping.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureInvalidRequest
	LoginFailureRateLimited
	LoginFailureInvalidCredentials
	LoginFailureSuspended
	LoginFailureDependency
)

// LoginAccount is the flow-local view of an account.
type LoginAccount struct {
	ID           string
	PasswordHash string
	State        UserState
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	UpgradeOnLogin bool

	ClientIPFromContext func(context.Context) string
	FindByEmail         func(ctx context.Context, email string) (*LoginAccount, error)
	VerifyPassword      func(password, encoded string) (ok bool, needsRehash bool, err error)
	HashPassword        func(string) (string, error)
	UpdatePasswordHash  func(ctx context.Context, userID, encoded string) error
	Warn                func(string, ...any)

	// RateLimiter is optional.
	RateLimiter *rate.Limiter

	Tokens TokenIssuer
	Store  RefreshStore
}

// LoginResult carries either the issued pair or failure metadata.
type LoginResult struct {
	Failure      LoginFailureKind
	Err          error
	UserID       string
	AccessToken  string
	RefreshToken string
}

// RunLogin verifies credentials and performs the first issuance of a pair.
func RunLogin(ctx context.Context, in LoginInput, deps LoginDeps) LoginResult {
	in.Email = NormalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return LoginResult{Failure: LoginFailureInvalidRequest, Err: err}
	}

	ip := ""
	if deps.ClientIPFromContext != nil {
		ip = deps.ClientIPFromContext(ctx)
	}

	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.CheckLogin(ctx, in.Email, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return LoginResult{Failure: LoginFailureRateLimited, Err: err}
			}
			return LoginResult{Failure: LoginFailureDependency, Err: err}
		}
	}

	fail := func(err error) LoginResult {
		if deps.RateLimiter != nil {
			if rlErr := deps.RateLimiter.IncrementLogin(ctx, in.Email, ip); rlErr != nil &&
				!errors.Is(rlErr, rate.ErrRateLimited) && deps.Warn != nil {
				deps.Warn("goGate: login failure counter update failed", "error", rlErr)
			}
		}
		return LoginResult{Failure: LoginFailureInvalidCredentials, Err: err}
	}

	account, err := deps.FindByEmail(ctx, in.Email)
	if err != nil {
		return LoginResult{Failure: LoginFailureDependency, Err: err}
	}
	if account == nil {
		return fail(nil)
	}

	ok, needsRehash, err := deps.VerifyPassword(in.Password, account.PasswordHash)
	if err != nil {
		// An unreadable stored hash is treated like a wrong password.
		if deps.Warn != nil {
			deps.Warn("goGate: stored password hash rejected", "user_id", account.ID, "error", err)
		}
		return fail(nil)
	}
	if !ok {
		return fail(nil)
	}

	if account.State == UserSuspended {
		return LoginResult{Failure: LoginFailureSuspended, UserID: account.ID}
	}

	if needsRehash && deps.UpgradeOnLogin {
		upgradePasswordHash(ctx, account.ID, in.Password, deps)
	}

	if deps.RateLimiter != nil {
		if err := deps.RateLimiter.ResetLogin(ctx, in.Email, ip); err != nil && deps.Warn != nil {
			deps.Warn("goGate: login failure counter reset failed", "error", err)
		}
	}

	access, refresh, err := IssuePair(ctx, account.ID, deps.Tokens, deps.Store)
	if err != nil {
		return LoginResult{Failure: LoginFailureDependency, Err: err, UserID: account.ID}
	}

	return LoginResult{
		UserID:       account.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}
}

func upgradePasswordHash(ctx context.Context, userID, password string, deps LoginDeps) {
	if deps.HashPassword == nil || deps.UpdatePasswordHash == nil {
		return
	}
	encoded, err := deps.HashPassword(password)
	if err == nil {
		err = deps.UpdatePasswordHash(ctx, userID, encoded)
	}
	if err != nil && deps.Warn != nil {
		deps.Warn("goGate: password hash upgrade failed", "user_id", userID, "error", err)
	}
}
