package rate

import "errors"

var (
	// ErrRateLimited is returned when a counter has exceeded its budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis failures while counting.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
