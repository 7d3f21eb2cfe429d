package goSession

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventResolveFailure      = "resolve_failure"
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventLoginRateLimited    = "login_rate_limited"
	auditEventMFARequired         = "mfa_required"
	auditEventMFASuccess          = "mfa_success"
	auditEventMFAFailure          = "mfa_failure"
	auditEventMFAAttemptsExceeded = "mfa_attempts_exceeded"
	auditEventFactorEnrolled      = "factor_enrolled"
	auditEventFactorUnenrolled    = "factor_unenrolled"
	auditEventRefreshSuccess      = "refresh_success"
	auditEventRefreshInvalid      = "refresh_invalid"
	auditEventRefreshRateLimited  = "refresh_rate_limited"
	auditEventRevoke              = "refresh_revoked"
	auditEventSessionIssued       = "session_issued"
	auditEventLogout              = "logout"
	auditEventRateLimitTriggered  = "rate_limit_triggered"
)

// AuditErrorCode defines a public type used by goSession APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrMissingToken        AuditErrorCode = "missing_token"
	auditErrInvalidToken        AuditErrorCode = "invalid_token"
	auditErrInvalidCredentials  AuditErrorCode = "invalid_credentials"
	auditErrRateLimited         AuditErrorCode = "rate_limited"
	auditErrRotationExpired     AuditErrorCode = "rotation_expired"
	auditErrMFAPendingExpired   AuditErrorCode = "mfa_pending_expired"
	auditErrMFAInvalid          AuditErrorCode = "mfa_invalid"
	auditErrMFAReplay           AuditErrorCode = "mfa_replay"
	auditErrMFAAttemptsExceeded AuditErrorCode = "mfa_attempts_exceeded"
	auditErrFactorNotFound      AuditErrorCode = "factor_not_found"
	auditErrProviderUnavailable AuditErrorCode = "provider_unavailable"
	auditErrInternal            AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(
	ctx context.Context,
	scope string,
	metadataBuilder func() map[string]string,
) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventRateLimitTriggered, false, "", nil, func() map[string]string {
		base := map[string]string{
			"scope": scope,
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrMissingToken):
		return auditErrMissingToken
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited),
		errors.Is(err, ErrRefreshRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrRotationExpired):
		return auditErrRotationExpired
	case errors.Is(err, ErrMFAPendingExpired):
		return auditErrMFAPendingExpired
	case errors.Is(err, ErrMFAVerificationFailed), errors.Is(err, ErrMFARequired):
		return auditErrMFAInvalid
	case errors.Is(err, ErrMFAReplay):
		return auditErrMFAReplay
	case errors.Is(err, ErrMFAAttemptsExceeded):
		return auditErrMFAAttemptsExceeded
	case errors.Is(err, ErrFactorNotFound):
		return auditErrFactorNotFound
	case IsProviderUnavailable(err):
		return auditErrProviderUnavailable
	default:
		return auditErrInternal
	}
}
