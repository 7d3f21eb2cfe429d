package goSession

import (
	"context"
	"errors"

	"github.com/MrEthical07/goSession/internal"
	"github.com/MrEthical07/goSession/internal/rate"
)

// ================================================================
// Rotation
// ================================================================
//
// Refresh consumes the presented token BEFORE asking the provider for a new
// session. Consumption is a single GETDEL, so a token value redeems at most
// once: the second presentation of the same value always fails with
// ErrRotationExpired, which is the replay signal.

// Refresh describes the refresh operation and its observable behavior.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*SessionBundle, error) {
	if refreshToken == "" {
		return nil, ErrMissingToken
	}

	tokenHash := internal.HashTokenKey(refreshToken)

	if err := e.rateLimiter.CheckRefresh(ctx, tokenHash); err != nil {
		switch {
		case errors.Is(err, rate.ErrRateLimited):
			e.metricInc(MetricRefreshRateLimited)
			e.emitRateLimit(ctx, "refresh", nil)
			e.emitAudit(ctx, auditEventRefreshRateLimited, false, "", ErrRefreshRateLimited, nil)
			return nil, ErrRefreshRateLimited
		case errors.Is(err, rate.ErrRedisUnavailable):
			e.warn("goSession: refresh rate check skipped, redis unavailable")
		}
	}

	old, err := e.refreshStore.Consume(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, errRefreshRecordNotFound) {
			e.metricInc(MetricRotationExpired)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, "", ErrRotationExpired, nil)
			return nil, ErrRotationExpired
		}
		return nil, err
	}

	session, err := e.provider.RefreshSession(ctx, refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		if IsProviderUnavailable(err) {
			e.metricInc(MetricProviderUnavailable)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, old.UserID, ErrProviderUnavailable, nil)
			return nil, ErrProviderUnavailable
		}
		e.emitAudit(ctx, auditEventRefreshInvalid, false, old.UserID, ErrRotationExpired, nil)
		return nil, ErrRotationExpired
	}

	var identity *Identity
	if session.User != nil {
		identity = e.identityFromProviderUser(session.User)
	} else {
		// Some providers omit the user record on refresh; the consumed
		// record still carries the owner.
		identity = &Identity{UserID: old.UserID, Role: e.config.DefaultRole}
	}
	bundle, err := e.issueSession(ctx, session, identity)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, identity.UserID, nil, nil)
	e.emitAudit(ctx, auditEventSessionIssued, true, identity.UserID, nil, nil)

	return bundle, nil
}

// Revoke describes the revoke operation and its observable behavior.
//
// Revoke may return an error when input validation, dependency calls, or security checks fail.
// Revoke does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrMissingToken
	}

	var userID string
	if record, err := e.refreshStore.Peek(ctx, refreshToken); err == nil {
		userID = record.UserID
	}

	deleted, err := e.refreshStore.Delete(ctx, refreshToken)
	if err != nil {
		return err
	}
	if deleted {
		e.metricInc(MetricSessionRevoked)
		e.emitAudit(ctx, auditEventRevoke, true, userID, nil, nil)
	}
	return nil
}
