package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRedisUnavailable wraps any failure talking to Redis.
	ErrRedisUnavailable = errors.New("redis unavailable")
	// ErrNotFound is returned when no refresh record exists for the user.
	ErrNotFound = errors.New("refresh record not found")
	// ErrRefreshMismatch is returned by Rotate when the stored refresh token is not
	// the one the caller expected. The record has already been deleted.
	ErrRefreshMismatch = errors.New("refresh token mismatch")
)

const (
	rotateStatusNotFound int64 = 0
	rotateStatusMismatch int64 = 1
	rotateStatusRotated  int64 = 2
)

// Compare-and-swap on the per-user record. A mismatch revokes the record so a
// replayed token cannot be retried against it.
const rotateRefreshScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
  redis.call("SET", KEYS[1], ARGV[2], "PX", ttl)
else
  redis.call("SET", KEYS[1], ARGV[2])
end
return 2
`

var rotateRefreshLua = redis.NewScript(rotateRefreshScript)

// Store keeps one refresh token per user in Redis under prefix:userID.
// Writes are last-write-wins except for Rotate.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore creates a Store. ttl is applied to every write; zero keeps records
// until they are overwritten or deleted.
func NewStore(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	return &Store{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Store) key(userID string) string {
	return s.prefix + ":" + userID
}

// Get returns the stored refresh token for userID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.redis.Get(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return val, nil
}

// Set overwrites the record for userID.
func (s *Store) Set(ctx context.Context, userID, refreshToken string) error {
	if err := s.redis.Set(ctx, s.key(userID), refreshToken, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Delete removes the record for userID. Deleting an absent record is not an error.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Rotate atomically replaces expected with next for userID.
//
// It returns ErrNotFound when no record exists and ErrRefreshMismatch when the
// record holds a different token. In the mismatch case the record is deleted
// in the same script, so two concurrent rotations of one token cannot both win.
//
//	Performance: 1 EVALSHA round-trip.
func (s *Store) Rotate(ctx context.Context, userID, expected, next string) error {
	res, err := rotateRefreshLua.Run(
		ctx,
		s.redis,
		[]string{s.key(userID)},
		expected,
		next,
		s.ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	switch res {
	case rotateStatusRotated:
		return nil
	case rotateStatusMismatch:
		return ErrRefreshMismatch
	case rotateStatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: unexpected rotate status %d", ErrRedisUnavailable, res)
	}
}

// TTL reports the remaining lifetime of the record for userID. It returns
// ErrNotFound when the record is absent and zero when it has no expiry.
func (s *Store) TTL(ctx context.Context, userID string) (time.Duration, error) {
	ttl, err := s.redis.PTTL(ctx, s.key(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	// go-redis reports -2 (missing) and -1 (no expiry) as raw durations.
	switch {
	case ttl == -2 || ttl == -2*time.Millisecond:
		return 0, ErrNotFound
	case ttl < 0:
		return 0, nil
	}
	return ttl, nil
}
