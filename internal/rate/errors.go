package rate

import "errors"

var (
	// ErrRateLimited is returned when an attempt budget is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps backend failures of the limiter itself.
	ErrRedisUnavailable = errors.New("rate limiter backend unavailable")
)
