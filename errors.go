package goSession

import "errors"

var (
	// ErrMissingToken is an exported constant or variable used by the session engine.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrTokenInvalid is an exported constant or variable used by the session engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRotationExpired is an exported constant or variable used by the session engine.
	ErrRotationExpired = errors.New("refresh token expired or already rotated")
	// ErrMFARequired is an exported constant or variable used by the session engine.
	ErrMFARequired = errors.New("mfa required")
	// ErrMFAPendingExpired is an exported constant or variable used by the session engine.
	ErrMFAPendingExpired = errors.New("mfa pending window expired")
	// ErrMFAVerificationFailed is an exported constant or variable used by the session engine.
	ErrMFAVerificationFailed = errors.New("mfa verification failed")
	// ErrMFAReplay is an exported constant or variable used by the session engine.
	ErrMFAReplay = errors.New("mfa pending record replay detected")
	// ErrMFAAttemptsExceeded is an exported constant or variable used by the session engine.
	ErrMFAAttemptsExceeded = errors.New("mfa verification attempts exceeded")
	// ErrFactorNotFound is an exported constant or variable used by the session engine.
	ErrFactorNotFound = errors.New("mfa factor not found")
	// ErrProviderUnavailable is an exported constant or variable used by the session engine.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	// ErrLoginRateLimited is an exported constant or variable used by the session engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is an exported constant or variable used by the session engine.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
