package goSession

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goSession/internal/rate"
	"github.com/MrEthical07/goSession/jwt"
)

// ================================================================
// Login and MFA confirmation
// ================================================================
//
// Login verifies the primary credential with the provider and then decides
// between two terminal outcomes: a completed session, or a pending MFA
// handshake. A pending handshake writes exactly one record (keyed by the
// provider access token) and nothing else; the refresh token rides inside
// that record so no session state exists until the second factor clears.

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	ip := clientIPFromContext(ctx)

	if err := e.rateLimiter.CheckLogin(ctx, email, ip); err != nil {
		switch {
		case errors.Is(err, rate.ErrRateLimited):
			e.metricInc(MetricLoginRateLimited)
			e.emitRateLimit(ctx, "login", func() map[string]string {
				return map[string]string{"email": email}
			})
			e.emitAudit(ctx, auditEventLoginRateLimited, false, "", ErrLoginRateLimited, nil)
			return nil, ErrLoginRateLimited
		case errors.Is(err, rate.ErrRedisUnavailable):
			e.warn("goSession: login rate check skipped, redis unavailable")
		}
	}

	session, err := e.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		if IsProviderUnavailable(err) {
			e.metricInc(MetricProviderUnavailable)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrProviderUnavailable, nil)
			return nil, ErrProviderUnavailable
		}
		if incErr := e.rateLimiter.IncrementLogin(ctx, email, ip); incErr != nil &&
			!errors.Is(incErr, rate.ErrRedisUnavailable) && !errors.Is(incErr, rate.ErrRateLimited) {
			e.warn("goSession: login attempt counter increment failed")
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	if err := e.rateLimiter.ResetLogin(ctx, email, ip); err != nil && !errors.Is(err, rate.ErrRedisUnavailable) {
		e.warn("goSession: login attempt counter reset failed")
	}

	factorID, mfaRequired, err := e.secondFactorRequired(ctx, session.AccessToken)
	if err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, session.User.ID, err, nil)
		return nil, err
	}
	if mfaRequired {
		result, err := e.beginMFAPending(ctx, session, factorID)
		if err != nil {
			return nil, err
		}
		e.metricInc(MetricMFARequired)
		e.emitAudit(ctx, auditEventMFARequired, true, session.User.ID, nil, func() map[string]string {
			return map[string]string{"factor_id": factorID}
		})
		return result, nil
	}

	identity := e.identityFromProviderUser(session.User)
	bundle, err := e.issueSession(ctx, session, identity)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, identity.UserID, nil, nil)
	e.emitAudit(ctx, auditEventSessionIssued, true, identity.UserID, nil, nil)

	return &LoginResult{Session: bundle}, nil
}

// secondFactorRequired reports whether the authenticated user still owes a
// second factor. It returns the verified factor to challenge. The lookups
// fail closed: while the provider cannot say whether a second factor is
// owed, no session is issued.
func (e *Engine) secondFactorRequired(ctx context.Context, accessToken string) (string, bool, error) {
	level, err := e.provider.AssuranceLevel(ctx, accessToken)
	if err != nil {
		return "", false, e.factorLookupError(err)
	}
	if level == AAL2 {
		return "", false, nil
	}

	factors, err := e.provider.ListFactors(ctx, accessToken)
	if err != nil {
		return "", false, e.factorLookupError(err)
	}
	for _, f := range factors {
		if f.Verified {
			return f.ID, true, nil
		}
	}
	return "", false, nil
}

func (e *Engine) factorLookupError(err error) error {
	if IsProviderUnavailable(err) {
		e.metricInc(MetricProviderUnavailable)
		return ErrProviderUnavailable
	}
	return ErrTokenInvalid
}

// beginMFAPending writes the pending handshake record. The record TTL is the
// configured pending window clamped to the access token's own cache TTL so a
// pending handshake can never outlive the token that anchors it.
func (e *Engine) beginMFAPending(ctx context.Context, session *ProviderSession, factorID string) (*LoginResult, error) {
	pendingTTL := e.config.MFA.PendingTTL
	tokenTTL := jwt.CacheTTL(session.AccessToken, time.Now(), e.ttlBounds())
	if tokenTTL < pendingTTL {
		pendingTTL = tokenTTL
		e.metricInc(MetricMFAPendingClamped)
	}

	record := &mfaPendingRecord{
		UserID:       session.User.ID,
		FactorID:     factorID,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    time.Now().Add(pendingTTL).Unix(),
	}
	if err := e.pendingStore.Save(ctx, session.AccessToken, record, pendingTTL); err != nil {
		return nil, err
	}

	return &LoginResult{
		MFARequired:  true,
		FactorID:     factorID,
		PendingToken: session.AccessToken,
	}, nil
}

// ConfirmMFA describes the confirmmfa operation and its observable behavior.
//
// ConfirmMFA may return an error when input validation, dependency calls, or security checks fail.
// ConfirmMFA does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConfirmMFA(ctx context.Context, pendingToken, code string) (*SessionBundle, error) {
	if pendingToken == "" {
		return nil, ErrMissingToken
	}

	record, err := e.pendingStore.Get(ctx, pendingToken)
	if err != nil {
		switch {
		case errors.Is(err, errMFAPendingExpired):
			e.metricInc(MetricMFAPendingExpired)
			e.emitAudit(ctx, auditEventMFAFailure, false, "", ErrMFAPendingExpired, nil)
			return nil, ErrMFAPendingExpired
		case errors.Is(err, errMFAPendingNotFound):
			e.metricInc(MetricMFAPendingExpired)
			e.emitAudit(ctx, auditEventMFAFailure, false, "", ErrMFAPendingExpired, nil)
			return nil, ErrMFAPendingExpired
		default:
			return nil, err
		}
	}

	challenge, err := e.provider.ChallengeFactor(ctx, pendingToken, record.FactorID)
	if err != nil {
		if IsProviderUnavailable(err) {
			e.metricInc(MetricProviderUnavailable)
			return nil, ErrProviderUnavailable
		}
		return nil, ErrMFAVerificationFailed
	}

	if err := e.provider.VerifyFactor(ctx, pendingToken, record.FactorID, challenge.ID, code); err != nil {
		if IsProviderUnavailable(err) {
			e.metricInc(MetricProviderUnavailable)
			return nil, ErrProviderUnavailable
		}
		exceeded, recErr := e.pendingStore.RecordFailure(ctx, pendingToken, e.config.MFA.MaxAttempts)
		if recErr != nil && !errors.Is(recErr, errMFAPendingNotFound) {
			e.warn("goSession: mfa attempt counter update failed")
		}
		if exceeded {
			e.metricInc(MetricMFAAttemptsExceeded)
			e.emitAudit(ctx, auditEventMFAAttemptsExceeded, false, record.UserID, ErrMFAAttemptsExceeded, nil)
			return nil, ErrMFAAttemptsExceeded
		}
		e.metricInc(MetricMFAConfirmFailure)
		e.emitAudit(ctx, auditEventMFAFailure, false, record.UserID, ErrMFAVerificationFailed, nil)
		return nil, ErrMFAVerificationFailed
	}

	// Identity is resolved before the handshake is consumed: a provider
	// outage here leaves the pending record intact for a retry.
	user, err := e.provider.VerifyToken(ctx, pendingToken)
	if err != nil {
		if IsProviderUnavailable(err) {
			e.metricInc(MetricProviderUnavailable)
			return nil, ErrProviderUnavailable
		}
		return nil, ErrTokenInvalid
	}
	identity := e.identityFromProviderUser(user)

	// Consume-once: losing the delete race means another confirmation
	// already redeemed this handshake.
	deleted, err := e.pendingStore.Delete(ctx, pendingToken)
	if err != nil {
		return nil, err
	}
	if !deleted {
		e.metricInc(MetricMFAReplayAttempt)
		e.emitAudit(ctx, auditEventMFAFailure, false, record.UserID, ErrMFAReplay, nil)
		return nil, ErrMFAReplay
	}

	bundle, err := e.issueSession(ctx, &ProviderSession{
		AccessToken:  pendingToken,
		RefreshToken: record.RefreshToken,
		User:         user,
	}, identity)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricMFAConfirmSuccess)
	e.emitAudit(ctx, auditEventMFASuccess, true, identity.UserID, nil, nil)
	e.emitAudit(ctx, auditEventSessionIssued, true, identity.UserID, nil, nil)

	return bundle, nil
}
