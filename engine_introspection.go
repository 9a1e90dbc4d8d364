package goGate

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goGate/internal/flows"
	"github.com/MrEthical07/goGate/session"
)

// HealthStatus is an on-demand backend health result.
type HealthStatus struct {
	RedisAvailable     bool
	RedisLatency       time.Duration
	DirectoryAvailable bool
	DirectoryLatency   time.Duration
}

// Healthy reports whether every backend answered.
func (h HealthStatus) Healthy() bool {
	return h.RedisAvailable && h.DirectoryAvailable
}

// directoryPinger is implemented by directories backed by a network service.
type directoryPinger interface {
	Ping(ctx context.Context) error
}

// Health pings Redis and, when it supports it, the user directory. A
// directory without a Ping method is reported available.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil || e.redis == nil {
		return HealthStatus{}
	}

	var h HealthStatus

	start := time.Now()
	err := e.redis.Ping(ctx).Err()
	h.RedisLatency = time.Since(start)
	h.RedisAvailable = err == nil

	h.DirectoryAvailable = true
	if p, ok := e.directory.(directoryPinger); ok {
		start = time.Now()
		err = p.Ping(ctx)
		h.DirectoryLatency = time.Since(start)
		h.DirectoryAvailable = err == nil
	}

	return h
}

// RefreshRecordTTL returns how long the user's refresh record has left. The
// boolean is false when the user has no record.
func (e *Engine) RefreshRecordTTL(ctx context.Context, userID string) (time.Duration, bool, error) {
	if e == nil || e.sessionStore == nil {
		return 0, false, ErrEngineNotReady
	}

	ttl, err := e.sessionStore.TTL(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, dependencyError(err)
	}
	return ttl, true, nil
}

// GetLoginAttempts returns the failed login count recorded for email in the
// current throttle window.
func (e *Engine) GetLoginAttempts(ctx context.Context, email string) (int, error) {
	if e == nil || e.rateLimiter == nil {
		return 0, ErrEngineNotReady
	}
	if email == "" {
		return 0, nil
	}

	n, err := e.rateLimiter.LoginAttempts(ctx, flows.NormalizeEmail(email))
	if err != nil {
		return 0, dependencyError(err)
	}
	return n, nil
}
