package goSession

import (
	"context"
	"net/http"
	"time"

	"github.com/MrEthical07/goSession/internal"
	"github.com/MrEthical07/goSession/jwt"
)

// issueSession converts a provider session into a fully materialized
// SessionBundle: the refresh token is recorded for one-shot rotation, the
// resolved identity is cached under the access token, and a fresh CSRF token
// is minted. A bundle is only produced for completed authentications; pending
// MFA logins never reach this path.
func (e *Engine) issueSession(ctx context.Context, session *ProviderSession, identity *Identity) (*SessionBundle, error) {
	now := time.Now()
	accessTTL := jwt.CacheTTL(session.AccessToken, now, e.ttlBounds())
	refreshTTL := e.refreshTTL()

	record := &refreshRecord{
		UserID:    identity.UserID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(refreshTTL).Unix(),
	}
	if err := e.refreshStore.Save(ctx, session.RefreshToken, record, refreshTTL); err != nil {
		return nil, err
	}

	e.cacheStore(ctx, session.AccessToken, identity, accessTTL)

	csrfToken, err := internal.NewCSRFToken()
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSessionIssued)

	return &SessionBundle{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		CSRFToken:    csrfToken,
		UserID:       identity.UserID,
		Email:        identity.Email,
		Role:         identity.Role,
		AccessTTL:    accessTTL,
		RefreshTTL:   refreshTTL,
	}, nil
}

// identityFromProviderUser normalizes the provider's user shape into the
// engine's Identity, applying the configured default role when the provider
// carries no role metadata.
func (e *Engine) identityFromProviderUser(user *ProviderUser) *Identity {
	role := e.config.DefaultRole
	if user.Metadata != nil {
		if r, ok := user.Metadata["role"]; ok && r != "" {
			role = r
		}
	}
	return &Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
	}
}

// Cookies describes the cookies operation and its observable behavior.
//
// Cookies does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Cookies(bundle *SessionBundle) []*http.Cookie {
	if bundle == nil {
		return nil
	}

	cfg := e.config.Cookies
	secure := e.config.Security.ProductionMode

	return []*http.Cookie{
		{
			Name:     cfg.SessionCookieName,
			Value:    bundle.AccessToken,
			Path:     "/",
			Domain:   cfg.Domain,
			MaxAge:   int(bundle.AccessTTL / time.Second),
			HttpOnly: true,
			Secure:   secure,
			SameSite: cfg.SameSite,
		},
		{
			Name:     cfg.RefreshCookieName,
			Value:    bundle.RefreshToken,
			Path:     cfg.RefreshCookiePath,
			Domain:   cfg.Domain,
			MaxAge:   int(bundle.RefreshTTL / time.Second),
			HttpOnly: true,
			Secure:   secure,
			SameSite: cfg.SameSite,
		},
		{
			Name:     cfg.CSRFCookieName,
			Value:    bundle.CSRFToken,
			Path:     "/",
			Domain:   cfg.Domain,
			MaxAge:   int(cfg.CSRFTTL / time.Second),
			HttpOnly: false,
			Secure:   secure,
			SameSite: cfg.SameSite,
		},
	}
}

// ClearCookies describes the clearcookies operation and its observable behavior.
//
// ClearCookies does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ClearCookies() []*http.Cookie {
	cfg := e.config.Cookies
	secure := e.config.Security.ProductionMode

	expire := func(name, path string, httpOnly bool) *http.Cookie {
		return &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			Domain:   cfg.Domain,
			MaxAge:   -1,
			HttpOnly: httpOnly,
			Secure:   secure,
			SameSite: cfg.SameSite,
		}
	}

	return []*http.Cookie{
		expire(cfg.SessionCookieName, "/", true),
		expire(cfg.RefreshCookieName, cfg.RefreshCookiePath, true),
		expire(cfg.CSRFCookieName, "/", false),
	}
}
