package goGate

import "errors"

var (
	// ErrDependencyUnavailable wraps Redis, directory and signing failures.
	// It is never mapped to an [AuthStatus]; HTTP layers answer it with a 5xx.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountSuspended is returned by Login for a suspended account.
	ErrAccountSuspended = errors.New("account suspended")
	// ErrAccountExists is returned when signing up with an email that is taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountCreationInvalid is returned when a signup request fails validation.
	ErrAccountCreationInvalid = errors.New("invalid account creation request")
	// ErrLoginInvalid is returned when a login request fails validation.
	ErrLoginInvalid = errors.New("invalid login request")
	// ErrLoginRateLimited is returned when too many failed logins hit one email or IP.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrAccountCreationDisabled is returned by CreateAccount when signup is turned off.
	ErrAccountCreationDisabled = errors.New("account creation disabled")
	// ErrAccountCreationRateLimited is returned when signups from one email or IP are throttled.
	ErrAccountCreationRateLimited = errors.New("account creation rate limited")
	// ErrEngineNotReady is returned when an Engine method is called on a nil or partially built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// dependencyError marks err as an infrastructure failure while keeping the
// original chain matchable with errors.Is.
func dependencyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDependencyUnavailable) {
		return err
	}
	return errors.Join(ErrDependencyUnavailable, err)
}
