package goGate

import (
	"context"
	"time"
)

// AuthStatus is the verdict the resolver reaches for one request.
//
// Exactly one status is assigned per resolution; [StatusNone] only appears on a
// zero AuthContext that has not been through the resolver.
type AuthStatus string

const (
	StatusNone                AuthStatus = "NONE"
	StatusMissingToken        AuthStatus = "MISSING_TOKEN"
	StatusInvalidAuthToken    AuthStatus = "INVALID_AUTH_TOKEN"
	StatusAuthenticated       AuthStatus = "AUTHENTICATED"
	StatusInvalidRefreshToken AuthStatus = "INVALID_REFRESH_TOKEN"
	StatusAuthRefreshMismatch AuthStatus = "AUTH_REFRESH_MISMATCH"
	StatusRefreshTokenReused  AuthStatus = "REFRESH_TOKEN_REUSED"
	StatusUserNotFound        AuthStatus = "USER_NOT_FOUND"
	StatusUserSuspended       AuthStatus = "USER_SUSPENDED"
)

// Diagnostic messages attached to each verdict.
const (
	msgMissingToken        = "missing authToken or refreshToken"
	msgInvalidAuthToken    = "invalid authToken"
	msgAuthenticated       = "authenticated"
	msgInvalidRefreshToken = "invalid refreshToken"
	msgAuthRefreshMismatch = "authToken and refreshToken mismatch"
	msgRefreshTokenReused  = "refreshToken has already been used"
	msgUserNotFound        = "user could not be found"
	msgUserSuspended       = "user suspended"
)

// AuthContext is the per-request authentication verdict.
//
// UserID is only set when AuthStatus is [StatusAuthenticated]. SetNewTokens is
// true only when the resolver rotated the credential pair for this request.
type AuthContext struct {
	UserID       string
	AuthStatus   AuthStatus
	Message      string
	SetNewTokens bool
}

// Authenticated reports whether the verdict admits the caller.
func (a AuthContext) Authenticated() bool {
	return a.AuthStatus == StatusAuthenticated && a.UserID != ""
}

// TokenPair is a freshly minted access/refresh credential pair. The refresh
// token's subject is exactly AccessToken.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// AccountStatus is the lifecycle state stored on a user account.
type AccountStatus string

const (
	AccountActive    AccountStatus = "ACTIVE"
	AccountSuspended AccountStatus = "SUSPENDED"
)

// Valid reports whether s is a known status.
func (s AccountStatus) Valid() bool {
	return s == AccountActive || s == AccountSuspended
}

// UserRecord is the account as held by a [UserDirectory].
type UserRecord struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Status       AccountStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUserInput is handed to [UserDirectory.CreateUser] once the engine has
// validated the request, hashed the password and assigned an id.
type CreateUserInput struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Status       AccountStatus
}

// UserDirectory is the account lookup the engine depends on.
//
// Lookups return (nil, nil) when no account matches. Any non-nil error is
// treated as an infrastructure failure. CreateUser must return an error
// matching [ErrAccountExists] when the email is already taken.
type UserDirectory interface {
	FindByID(ctx context.Context, userID string) (*UserRecord, error)
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (*UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// CreateAccountRequest is the signup payload.
type CreateAccountRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// CreateAccountResult carries the new account and, when auto-login is enabled,
// its first credential pair.
type CreateAccountResult struct {
	User   UserRecord
	Tokens *TokenPair
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	User   UserRecord
	Tokens TokenPair
}
