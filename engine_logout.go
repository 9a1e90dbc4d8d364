package goGate

import (
	"context"

	"github.com/MrEthical07/goGate/internal/flows"
)

// Logout deletes the user's refresh record so the current pair can no longer
// be rotated. It succeeds when no record exists.
func (e *Engine) Logout(ctx context.Context, userID string) error {
	if e == nil || e.sessionStore == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return nil
	}

	if err := flows.RunLogout(ctx, userID, e.sessionStore); err != nil {
		e.warn("goGate: logout could not delete refresh record", "user_id", userID, "error", err)
		return dependencyError(err)
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, userID, StatusNone, nil, nil)
	return nil
}
