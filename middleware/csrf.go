package middleware

import (
	"crypto/subtle"
	"net/http"

	goSession "github.com/MrEthical07/goSession"
)

// CSRFHeaderName is an exported constant or variable used by the session engine.
const CSRFHeaderName = "X-CSRF-Token"

var safeMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// RequireCSRF describes the requirecsrf operation and its observable behavior.
//
// RequireCSRF does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The check is the classic double-submit pattern: the script-readable CSRF
// cookie value must be echoed back in the request header. Safe methods pass
// through untouched.
func RequireCSRF(engine *goSession.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if safeMethods[r.Method] {
				next.ServeHTTP(w, r)
				return
			}

			cookie, err := r.Cookie(engine.CSRFCookieName())
			if err != nil || cookie.Value == "" {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			header := r.Header.Get(CSRFHeaderName)
			if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
