package goSession

import "context"

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" && refreshToken == "" {
		return ErrMissingToken
	}

	var userID string
	if accessToken != "" {
		if identity, ok := e.cacheLookup(ctx, accessToken); ok {
			userID = identity.UserID
		}
		e.cacheEvict(ctx, accessToken)
	}

	if refreshToken != "" {
		if _, err := e.refreshStore.Delete(ctx, refreshToken); err != nil {
			return err
		}
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, userID, nil, nil)

	return nil
}
