package flows

import (
	"context"
	"errors"
	"strings"

	"github.com/MrEthical07/goGate/internal/limiters"
)

// AccountFailureKind classifies signup failures for root-level mapping.
type AccountFailureKind int

const (
	AccountFailureNone AccountFailureKind = iota
	AccountFailureDisabled
	AccountFailureInvalid
	AccountFailureRateLimited
	AccountFailureDuplicate
	AccountFailureDependency
	AccountFailureInternal
)

// NewAccount is the record handed to CreateUser.
type NewAccount struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

// AccountDeps captures signup dependencies.
type AccountDeps struct {
	Enabled   bool
	AutoLogin bool

	ClientIPFromContext func(context.Context) string
	Limiter             *limiters.AccountCreationLimiter
	FindByEmail         func(ctx context.Context, email string) (bool, error)
	HashPassword        func(string) (string, error)
	NewUserID           func() string
	CreateUser          func(ctx context.Context, account NewAccount) error
	// AccountExists is the sentinel CreateUser returns for a taken email.
	AccountExists error

	Tokens TokenIssuer
	Store  RefreshStore
}

// AccountResult carries the created id and, with auto-login, the first pair.
type AccountResult struct {
	Failure      AccountFailureKind
	Err          error
	UserID       string
	AccessToken  string
	RefreshToken string
}

// RunCreateAccount validates, hashes and persists a new ACTIVE account.
func RunCreateAccount(ctx context.Context, in AccountInput, deps AccountDeps) AccountResult {
	if !deps.Enabled {
		return AccountResult{Failure: AccountFailureDisabled}
	}

	in.Email = NormalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := in.Validate(); err != nil {
		return AccountResult{Failure: AccountFailureInvalid, Err: err}
	}

	if deps.Limiter != nil {
		ip := ""
		if deps.ClientIPFromContext != nil {
			ip = deps.ClientIPFromContext(ctx)
		}
		if err := deps.Limiter.Enforce(ctx, in.Email, ip); err != nil {
			if errors.Is(err, limiters.ErrAccountRateLimited) {
				return AccountResult{Failure: AccountFailureRateLimited, Err: err}
			}
			return AccountResult{Failure: AccountFailureDependency, Err: err}
		}
	}

	exists, err := deps.FindByEmail(ctx, in.Email)
	if err != nil {
		return AccountResult{Failure: AccountFailureDependency, Err: err}
	}
	if exists {
		return AccountResult{Failure: AccountFailureDuplicate}
	}

	encoded, err := deps.HashPassword(in.Password)
	if err != nil {
		return AccountResult{Failure: AccountFailureInternal, Err: err}
	}

	userID := deps.NewUserID()
	err = deps.CreateUser(ctx, NewAccount{
		ID:           userID,
		Email:        in.Email,
		PasswordHash: encoded,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	})
	if err != nil {
		// The existence check above races with concurrent signups.
		if deps.AccountExists != nil && errors.Is(err, deps.AccountExists) {
			return AccountResult{Failure: AccountFailureDuplicate}
		}
		return AccountResult{Failure: AccountFailureDependency, Err: err}
	}

	res := AccountResult{UserID: userID}
	if !deps.AutoLogin {
		return res
	}

	res.AccessToken, res.RefreshToken, err = IssuePair(ctx, userID, deps.Tokens, deps.Store)
	if err != nil {
		return AccountResult{Failure: AccountFailureDependency, Err: err, UserID: userID}
	}
	return res
}
