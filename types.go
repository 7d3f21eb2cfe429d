package goSession

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AssuranceLevel is the tiered indicator of how strongly a session's
// identity was verified: single factor (aal1) or multi factor (aal2).
type AssuranceLevel string

const (
	// AAL1 is an exported constant or variable used by the session engine.
	AAL1 AssuranceLevel = "aal1"
	// AAL2 is an exported constant or variable used by the session engine.
	AAL2 AssuranceLevel = "aal2"
)

// Identity is the minimal identity record cached per bearer token. Email is
// empty when the provider did not report one; Role falls back to
// [Config.DefaultRole] when provider metadata omits it.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// ProviderUser is the normalized user record returned by
// [IdentityProvider.VerifyToken]. Metadata carries provider-specific
// attributes; only the "role" key is interpreted by the engine.
type ProviderUser struct {
	ID       string
	Email    string
	Metadata map[string]string
}

// ProviderSession is the normalized token pair minted by the provider on
// sign-in and on refresh. ExpiresIn is seconds until the access token
// expires, as reported by the provider.
type ProviderSession struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         *ProviderUser
}

// Factor describes a second factor enrolled on an account.
type Factor struct {
	ID       string
	Type     string
	Verified bool
}

// Challenge is an in-flight second-factor challenge issued by the provider.
type Challenge struct {
	ID string
}

// IdentityProvider is the interface callers must implement to integrate
// goSession with their identity provider. All token minting, password
// verification, and one-time-code checking happens behind this boundary;
// implementations should normalize failures into [*ProviderError].
//
//	Docs: docs/provider.md
type IdentityProvider interface {
	VerifyToken(ctx context.Context, token string) (*ProviderUser, error)
	SignInWithPassword(ctx context.Context, email, password string) (*ProviderSession, error)
	RefreshSession(ctx context.Context, refreshToken string) (*ProviderSession, error)

	AssuranceLevel(ctx context.Context, accessToken string) (AssuranceLevel, error)
	ListFactors(ctx context.Context, accessToken string) ([]Factor, error)
	EnrollFactor(ctx context.Context, accessToken, factorType string) (*Factor, error)
	UnenrollFactor(ctx context.Context, accessToken, factorID string) error
	ChallengeFactor(ctx context.Context, accessToken, factorID string) (*Challenge, error)
	VerifyFactor(ctx context.Context, accessToken, factorID, challengeID, code string) error
}

// ProviderError is the normalized failure shape for all provider calls.
// Temporary marks network/timeout class failures that the client may retry
// with backoff; everything else is a rejection and is never retried.
type ProviderError struct {
	Code      string
	Message   string
	Temporary bool
}

// Error describes the error operation and its observable behavior.
func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.Code == "" {
		return fmt.Sprintf("provider error: %s", e.Message)
	}
	return fmt.Sprintf("provider error %s: %s", e.Code, e.Message)
}

// IsProviderUnavailable reports whether err is a temporary provider failure
// (network, timeout, 5xx class) as opposed to a rejection.
func IsProviderUnavailable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Temporary
	}
	return errors.Is(err, ErrProviderUnavailable)
}

// LoginResult is returned by [Engine.Login] and [Engine.ConfirmMFA]. When
// MFARequired is true, PendingToken and FactorID drive the second step and
// Session is nil: no cache entry or refresh record exists yet.
type LoginResult struct {
	MFARequired  bool
	FactorID     string
	PendingToken string

	Session *SessionBundle
}

// SessionBundle carries the artifacts of a completed session: the token
// pair, a fresh CSRF token, the resolved identity, and the computed cookie
// lifetimes. Bundles are derived, not stored; the server-side state is the
// cache entry and the refresh record.
type SessionBundle struct {
	AccessToken  string
	RefreshToken string
	CSRFToken    string

	UserID string
	Email  string
	Role   string

	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// EnrollResult is returned by [Engine.EnrollFactor]. PrunedFactors counts
// the stale unverified factors removed before the new enrollment.
type EnrollResult struct {
	Factor        *Factor
	PrunedFactors int
}
