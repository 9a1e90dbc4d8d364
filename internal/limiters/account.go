package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAccountRateLimited      = errors.New("account rate limited")
	ErrAccountRedisUnavailable = errors.New("account redis unavailable")
)

type AccountConfig struct {
	EnableIdentifierThrottle bool
	EnableIPThrottle         bool
	MaxAttempts              int
	Cooldown                 time.Duration
}

// AccountCreationLimiter counts signup attempts per email and per client IP.
// A nil limiter allows everything.
type AccountCreationLimiter struct {
	redis  redis.UniversalClient
	config AccountConfig
}

func NewAccountCreationLimiter(redisClient redis.UniversalClient, cfg AccountConfig) *AccountCreationLimiter {
	return &AccountCreationLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Enforce counts one attempt and returns ErrAccountRateLimited once either
// counter passes MaxAttempts within the cooldown window.
func (l *AccountCreationLimiter) Enforce(ctx context.Context, email, ip string) error {
	if l == nil {
		return nil
	}

	if l.config.EnableIdentifierThrottle && email != "" {
		if err := l.enforceKey(ctx, "aca:"+email); err != nil {
			return err
		}
	}

	if l.config.EnableIPThrottle && ip != "" {
		if err := l.enforceKey(ctx, "acaip:"+ip); err != nil {
			return err
		}
	}

	return nil
}

func (l *AccountCreationLimiter) enforceKey(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAccountRedisUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrAccountRedisUnavailable, err)
		}
	}

	if count > int64(l.config.MaxAttempts) {
		return ErrAccountRateLimited
	}

	return nil
}
