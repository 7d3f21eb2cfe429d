package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Bounds defines a public type used by goSession APIs.
//
// Bounds instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Bounds struct {
	SafetyBuffer time.Duration
	Floor        time.Duration
	Ceiling      time.Duration
	Fallback     time.Duration
}

// DefaultBounds returns the standard TTL derivation bounds: a 30 second
// safety buffer, a [60s, 6h] clamp, and a 5 minute fallback when the expiry
// claim cannot be read.
func DefaultBounds() Bounds {
	return Bounds{
		SafetyBuffer: 30 * time.Second,
		Floor:        60 * time.Second,
		Ceiling:      6 * time.Hour,
		Fallback:     5 * time.Minute,
	}
}

func (b Bounds) normalized() Bounds {
	def := DefaultBounds()
	if b.SafetyBuffer <= 0 {
		b.SafetyBuffer = def.SafetyBuffer
	}
	if b.Floor <= 0 {
		b.Floor = def.Floor
	}
	if b.Ceiling < b.Floor {
		b.Ceiling = def.Ceiling
	}
	if b.Fallback <= 0 {
		b.Fallback = def.Fallback
	}
	return b
}

// CacheTTL derives a safe cache lifetime from the token's embedded expiry
// claim. The claim is decoded without signature verification: the resolver
// verifies the token against the provider, this function only bounds how
// long the verified result may be cached. The safety buffer makes the cache
// entry disappear before the token itself would be rejected.
//
// Decoding failure is not an error condition for the caller: a missing or
// malformed claim yields the fallback TTL. CacheTTL never panics and never
// returns a non-positive duration.
func CacheTTL(token string, now time.Time, b Bounds) time.Duration {
	b = b.normalized()

	exp, ok := tokenExpiry(token)
	if !ok {
		return b.Fallback
	}

	remaining := exp.Sub(now) - b.SafetyBuffer
	if remaining < b.Floor {
		return b.Floor
	}
	if remaining > b.Ceiling {
		return b.Ceiling
	}
	return remaining
}

// CacheTTLDefault is CacheTTL with [DefaultBounds].
func CacheTTLDefault(token string, now time.Time) time.Duration {
	return CacheTTL(token, now, DefaultBounds())
}

func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
