package goSession

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/jwt"
)

// ================================================================
// Identity resolution
// ================================================================
//
// Resolve is the hot path: every authenticated request funnels through it.
// The Redis cache short-circuits the provider round trip; a cache miss falls
// through to the provider and re-primes the cache with a TTL derived from the
// token's own expiry so cached entries never outlive the token.

// Resolve describes the resolve operation and its observable behavior.
//
// Resolve may return an error when input validation, dependency calls, or security checks fail.
// Resolve does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	start := time.Now()
	defer func() {
		e.metricObserve(MetricResolveLatency, time.Since(start))
	}()

	if identity, ok := e.cacheLookup(ctx, token); ok {
		e.metricInc(MetricResolveCacheHit)
		return identity, nil
	}
	e.metricInc(MetricResolveCacheMiss)

	user, err := e.provider.VerifyToken(ctx, token)
	if err != nil {
		e.metricInc(MetricResolveFailure)
		if IsProviderUnavailable(err) {
			e.metricInc(MetricProviderUnavailable)
			e.emitAudit(ctx, auditEventResolveFailure, false, "", ErrProviderUnavailable, nil)
			return nil, ErrProviderUnavailable
		}
		e.emitAudit(ctx, auditEventResolveFailure, false, "", ErrTokenInvalid, nil)
		return nil, ErrTokenInvalid
	}

	identity := e.identityFromProviderUser(user)

	ttl := jwt.CacheTTL(token, time.Now(), e.ttlBounds())
	e.cacheStore(ctx, token, identity, ttl)

	return identity, nil
}

// ResolveOptional describes the resolveoptional operation and its observable behavior.
//
// ResolveOptional may return an error when input validation, dependency calls, or security checks fail.
// ResolveOptional does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResolveOptional(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}
	identity, err := e.Resolve(ctx, token)
	if err != nil {
		if IsProviderUnavailable(err) {
			return nil, err
		}
		return nil, nil
	}
	return identity, nil
}

// ResolveRequest describes the resolverequest operation and its observable behavior.
//
// ResolveRequest may return an error when input validation, dependency calls, or security checks fail.
// ResolveRequest does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResolveRequest(ctx context.Context, r *http.Request) (*Identity, error) {
	return e.Resolve(ctx, e.TokenFromRequest(r))
}

// TokenFromRequest describes the tokenfromrequest operation and its observable behavior.
//
// TokenFromRequest does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) TokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		const prefix = "Bearer "
		if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
			return strings.TrimSpace(auth[len(prefix):])
		}
	}

	if cookie, err := r.Cookie(e.config.Cookies.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}
