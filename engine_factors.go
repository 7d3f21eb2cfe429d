package goSession

import "context"

// ================================================================
// Factor management
// ================================================================
//
// Providers typically refuse a new enrollment while an abandoned unverified
// factor of the same type lingers, so EnrollFactor prunes every unverified
// factor before enrolling. Verified factors are never touched by the prune.

// EnrollFactor describes the enrollfactor operation and its observable behavior.
//
// EnrollFactor may return an error when input validation, dependency calls, or security checks fail.
// EnrollFactor does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) EnrollFactor(ctx context.Context, accessToken, factorType string) (*EnrollResult, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}

	factors, err := e.provider.ListFactors(ctx, accessToken)
	if err != nil {
		if IsProviderUnavailable(err) {
			e.metricInc(MetricProviderUnavailable)
			return nil, ErrProviderUnavailable
		}
		return nil, ErrTokenInvalid
	}

	pruned := 0
	for _, f := range factors {
		if f.Verified {
			continue
		}
		if err := e.provider.UnenrollFactor(ctx, accessToken, f.ID); err != nil {
			if IsProviderUnavailable(err) {
				e.metricInc(MetricProviderUnavailable)
				return nil, ErrProviderUnavailable
			}
			// Already gone on the provider side; nothing to prune.
			continue
		}
		pruned++
		e.metricInc(MetricFactorPruned)
	}

	factor, err := e.provider.EnrollFactor(ctx, accessToken, factorType)
	if err != nil {
		if IsProviderUnavailable(err) {
			e.metricInc(MetricProviderUnavailable)
			return nil, ErrProviderUnavailable
		}
		return nil, ErrMFAVerificationFailed
	}

	e.metricInc(MetricFactorEnrolled)
	e.emitAudit(ctx, auditEventFactorEnrolled, true, "", nil, func() map[string]string {
		return map[string]string{
			"factor_type": factorType,
			"factor_id":   factor.ID,
		}
	})

	return &EnrollResult{
		Factor:        factor,
		PrunedFactors: pruned,
	}, nil
}

// UnenrollFactor describes the unenrollfactor operation and its observable behavior.
//
// UnenrollFactor may return an error when input validation, dependency calls, or security checks fail.
// UnenrollFactor does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) UnenrollFactor(ctx context.Context, accessToken, factorID string) error {
	if accessToken == "" {
		return ErrMissingToken
	}
	if factorID == "" {
		return ErrFactorNotFound
	}

	factors, err := e.provider.ListFactors(ctx, accessToken)
	if err != nil {
		if IsProviderUnavailable(err) {
			e.metricInc(MetricProviderUnavailable)
			return ErrProviderUnavailable
		}
		return ErrTokenInvalid
	}

	found := false
	for _, f := range factors {
		if f.ID == factorID {
			found = true
			break
		}
	}
	if !found {
		return ErrFactorNotFound
	}

	if err := e.provider.UnenrollFactor(ctx, accessToken, factorID); err != nil {
		if IsProviderUnavailable(err) {
			e.metricInc(MetricProviderUnavailable)
			return ErrProviderUnavailable
		}
		return ErrFactorNotFound
	}

	e.emitAudit(ctx, auditEventFactorUnenrolled, true, "", nil, func() map[string]string {
		return map[string]string{"factor_id": factorID}
	})

	return nil
}

// ListFactors describes the listfactors operation and its observable behavior.
//
// ListFactors may return an error when input validation, dependency calls, or security checks fail.
// ListFactors does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ListFactors(ctx context.Context, accessToken string) ([]Factor, error) {
	if accessToken == "" {
		return nil, ErrMissingToken
	}
	factors, err := e.provider.ListFactors(ctx, accessToken)
	if err != nil {
		if IsProviderUnavailable(err) {
			e.metricInc(MetricProviderUnavailable)
			return nil, ErrProviderUnavailable
		}
		return nil, ErrTokenInvalid
	}
	return factors, nil
}
