package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
)

// ResolveOutcome is the terminal state of one resolution, in decision order.
type ResolveOutcome int

const (
	ResolveNone ResolveOutcome = iota
	ResolveMissingToken
	ResolveInvalidAccess
	ResolveAuthenticated
	ResolveInvalidRefresh
	ResolveMismatch
	ResolveReused
	ResolveUserNotFound
	ResolveUserSuspended
	ResolveRotated
)

// UserState is what the resolver needs to know about an account.
type UserState int

const (
	UserMissing UserState = iota
	UserActive
	UserSuspended
)

// TokenIssuer verifies and mints the credential pair.
type TokenIssuer interface {
	ParseAccess(tokenStr string, ignoreExpiration bool) (*jwt.Claims, error)
	ParseRefresh(tokenStr string) (*jwt.Claims, error)
	Expired(claims *jwt.Claims) bool
	CreateAccess(userID string) (string, error)
	CreateRefresh(pairedAccess string) (string, error)
}

// RefreshStore is the per-user refresh record.
type RefreshStore interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, refreshToken string) error
	Delete(ctx context.Context, userID string) error
	Rotate(ctx context.Context, userID, expected, next string) error
}

// ResolveDeps captures resolver dependencies.
type ResolveDeps struct {
	Tokens         TokenIssuer
	Store          RefreshStore
	LookupUser     func(ctx context.Context, userID string) (UserState, error)
	AtomicRotation bool
}

// Reasons attached to ResolveReused.
const (
	ReuseStoreMismatch = "store_mismatch"
	ReuseRecordMissing = "record_missing"
	ReuseCASLost       = "cas_lost"
)

// ResolveResult carries the outcome and, for ResolveRotated, the new pair.
//
// UserID is the access-token subject once the access token has verified. It
// is set on ResolveReused, ResolveUserNotFound and ResolveUserSuspended for
// auditing even though those outcomes do not authenticate anyone.
type ResolveResult struct {
	Outcome      ResolveOutcome
	UserID       string
	Reason       string
	AccessToken  string
	RefreshToken string
}

// RunResolve classifies the presented cookie pair.
//
// Credential problems end in an outcome with a nil error. A non-nil error is
// always an infrastructure failure from the store, the user lookup or token
// signing, and the outcome is ResolveNone.
func RunResolve(ctx context.Context, accessToken, refreshToken string, deps ResolveDeps) (ResolveResult, error) {
	if accessToken == "" || refreshToken == "" {
		return ResolveResult{Outcome: ResolveMissingToken}, nil
	}

	access, err := deps.Tokens.ParseAccess(accessToken, true)
	if err != nil {
		return ResolveResult{Outcome: ResolveInvalidAccess}, nil
	}
	userID := access.Subject

	if !deps.Tokens.Expired(access) {
		return ResolveResult{Outcome: ResolveAuthenticated, UserID: userID}, nil
	}

	refresh, err := deps.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return ResolveResult{Outcome: ResolveInvalidRefresh}, nil
	}
	if refresh.Subject != accessToken {
		return ResolveResult{Outcome: ResolveMismatch}, nil
	}

	stored, err := deps.Store.Get(ctx, userID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return ResolveResult{}, err
	}
	if stored != refreshToken {
		if err := deps.Store.Delete(ctx, userID); err != nil {
			return ResolveResult{}, err
		}
		reason := ReuseStoreMismatch
		if stored == "" {
			reason = ReuseRecordMissing
		}
		return ResolveResult{Outcome: ResolveReused, UserID: userID, Reason: reason}, nil
	}

	state, err := deps.LookupUser(ctx, userID)
	if err != nil {
		return ResolveResult{}, err
	}
	switch state {
	case UserActive:
	case UserSuspended:
		return ResolveResult{Outcome: ResolveUserSuspended, UserID: userID}, nil
	default:
		return ResolveResult{Outcome: ResolveUserNotFound, UserID: userID}, nil
	}

	nextAccess, err := deps.Tokens.CreateAccess(userID)
	if err != nil {
		return ResolveResult{}, err
	}
	nextRefresh, err := deps.Tokens.CreateRefresh(nextAccess)
	if err != nil {
		return ResolveResult{}, err
	}

	if deps.AtomicRotation {
		// A concurrent request may have rotated between Get and here.
		err = deps.Store.Rotate(ctx, userID, refreshToken, nextRefresh)
		switch {
		case errors.Is(err, session.ErrRefreshMismatch), errors.Is(err, session.ErrNotFound):
			return ResolveResult{Outcome: ResolveReused, UserID: userID, Reason: ReuseCASLost}, nil
		case err != nil:
			return ResolveResult{}, err
		}
	} else if err := deps.Store.Set(ctx, userID, nextRefresh); err != nil {
		return ResolveResult{}, err
	}

	return ResolveResult{
		Outcome:      ResolveRotated,
		UserID:       userID,
		AccessToken:  nextAccess,
		RefreshToken: nextRefresh,
	}, nil
}
