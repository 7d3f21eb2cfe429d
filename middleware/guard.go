package middleware

import (
	"context"
	"errors"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

type identityContextKey struct{}

// IdentityFromContext describes the identityfromcontext operation and its observable behavior.
//
// IdentityFromContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func IdentityFromContext(ctx context.Context) (*goSession.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*goSession.Identity)
	return identity, ok
}

// Require describes the require operation and its observable behavior.
//
// Require does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Require(engine *goSession.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := engine.ResolveRequest(r.Context(), r)
			if err != nil {
				if errors.Is(err, goSession.ErrProviderUnavailable) {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Optional describes the optional operation and its observable behavior.
//
// Optional does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Optional(engine *goSession.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := engine.ResolveOptional(r.Context(), engine.TokenFromRequest(r))
			if err != nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if identity == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
