package goGate

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goGate/internal/flows"
	"github.com/google/uuid"
)

// CreateAccount registers a new ACTIVE account.
//
// The email is trimmed and lowercased before the duplicate check. A taken
// email returns [ErrAccountExists]; a request failing field rules returns an
// error matching [ErrAccountCreationInvalid]. With Account.AutoLogin the
// result also carries a freshly issued pair.
func (e *Engine) CreateAccount(ctx context.Context, req CreateAccountRequest) (*CreateAccountResult, error) {
	if e == nil || e.directory == nil || e.passwordHash == nil || e.jwtManager == nil || e.sessionStore == nil {
		return nil, ErrEngineNotReady
	}

	var created *UserRecord
	res := flows.RunCreateAccount(ctx, flows.AccountInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}, flows.AccountDeps{
		Enabled:             e.config.Account.Enabled,
		AutoLogin:           e.config.Account.AutoLogin,
		ClientIPFromContext: clientIPFromContext,
		Limiter:             e.accountLimiter,
		FindByEmail: func(ctx context.Context, email string) (bool, error) {
			user, err := e.directory.FindByEmail(ctx, email)
			if err != nil {
				return false, err
			}
			return user != nil, nil
		},
		HashPassword: e.passwordHash.Hash,
		NewUserID:    uuid.NewString,
		CreateUser: func(ctx context.Context, account flows.NewAccount) error {
			user, err := e.directory.CreateUser(ctx, CreateUserInput{
				ID:           account.ID,
				Email:        account.Email,
				PasswordHash: account.PasswordHash,
				FirstName:    account.FirstName,
				LastName:     account.LastName,
				Status:       AccountActive,
			})
			if err != nil {
				return err
			}
			created = user
			return nil
		},
		AccountExists: ErrAccountExists,
		Tokens:        e.jwtManager,
		Store:         e.sessionStore,
	})

	if res.Failure != flows.AccountFailureNone {
		err := accountFailureError(res)
		switch res.Failure {
		case flows.AccountFailureDuplicate:
			e.metricInc(MetricAccountCreationDuplicate)
		case flows.AccountFailureRateLimited:
			e.metricInc(MetricAccountCreationRateLimited)
		}
		e.emitAudit(ctx, auditEventAccountCreationFail, false, res.UserID, StatusNone, err, nil)
		return nil, err
	}

	e.metricInc(MetricAccountCreationSuccess)
	e.emitAudit(ctx, auditEventAccountCreated, true, res.UserID, StatusNone, nil, nil)

	out := &CreateAccountResult{}
	if created != nil {
		out.User = *created
	} else {
		out.User = UserRecord{ID: res.UserID, Status: AccountActive}
	}
	out.User.PasswordHash = ""
	if res.AccessToken != "" {
		out.Tokens = e.tokenPair(res.AccessToken, res.RefreshToken)
	}
	return out, nil
}

func accountFailureError(res flows.AccountResult) error {
	switch res.Failure {
	case flows.AccountFailureDisabled:
		return ErrAccountCreationDisabled
	case flows.AccountFailureInvalid:
		if res.Err == nil {
			return ErrAccountCreationInvalid
		}
		return fmt.Errorf("%w: %v", ErrAccountCreationInvalid, res.Err)
	case flows.AccountFailureRateLimited:
		return ErrAccountCreationRateLimited
	case flows.AccountFailureDuplicate:
		return ErrAccountExists
	case flows.AccountFailureInternal:
		return fmt.Errorf("goGate: hash password: %w", res.Err)
	default:
		return dependencyError(res.Err)
	}
}
