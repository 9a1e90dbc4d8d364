package goGate

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventResolveRotated       = "resolve_rotated"
	auditEventRefreshReuseDetected = "refresh_reuse_detected"
	auditEventResolveUserSuspended = "resolve_user_suspended"
	auditEventResolveUserNotFound  = "resolve_user_not_found"
	auditEventLoginSuccess         = "login_success"
	auditEventLoginFailure         = "login_failure"
	auditEventLoginRateLimited     = "login_rate_limited"
	auditEventAccountCreated       = "account_created"
	auditEventAccountCreationFail  = "account_creation_failure"
	auditEventLogout               = "logout"
)

// AuditErrorCode is the stable error label written into [AuditEvent].Error.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrInvalidRequest     AuditErrorCode = "invalid_request"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrAccountSuspended   AuditErrorCode = "account_suspended"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrDisabled           AuditErrorCode = "disabled"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	status AuthStatus,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if status != "" && status != StatusNone {
		event.Status = string(status)
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrDependencyUnavailable):
		return auditErrUnavailable
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginInvalid),
		errors.Is(err, ErrAccountCreationInvalid):
		return auditErrInvalidRequest
	case errors.Is(err, ErrLoginRateLimited),
		errors.Is(err, ErrAccountCreationRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrAccountSuspended):
		return auditErrAccountSuspended
	case errors.Is(err, ErrAccountExists):
		return auditErrDuplicate
	case errors.Is(err, ErrAccountCreationDisabled):
		return auditErrDisabled
	default:
		return auditErrInternal
	}
}
