package goSession

import (
	"net/http"
	"testing"
	"time"
)

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not found", name)
	return nil
}

func TestCookiesShapeAndScope(t *testing.T) {
	provider := newFakeProvider(t)
	engine, _, cleanup := buildTestEngine(t, engineTestConfig(), provider)
	defer cleanup()

	bundle := loginTestUser(t, engine, provider)
	cookies := engine.Cookies(bundle)
	if len(cookies) != 3 {
		t.Fatalf("cookie count = %d, want 3", len(cookies))
	}

	session := cookieByName(t, cookies, "session_token")
	if !session.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
	if session.Path != "/" {
		t.Fatalf("session cookie path = %q, want /", session.Path)
	}
	if session.Value != bundle.AccessToken {
		t.Fatal("session cookie does not carry the access token")
	}
	if got, want := session.MaxAge, int(bundle.AccessTTL/time.Second); got != want {
		t.Fatalf("session cookie MaxAge = %d, want %d", got, want)
	}

	refresh := cookieByName(t, cookies, "refresh_token")
	if !refresh.HttpOnly {
		t.Fatal("refresh cookie must be HttpOnly")
	}
	if refresh.Path != "/auth/refresh" {
		t.Fatalf("refresh cookie path = %q, want /auth/refresh", refresh.Path)
	}
	if got, want := refresh.MaxAge, int((7*24*time.Hour)/time.Second); got != want {
		t.Fatalf("refresh cookie MaxAge = %d, want %d", got, want)
	}

	csrf := cookieByName(t, cookies, "csrf_token")
	if csrf.HttpOnly {
		t.Fatal("CSRF cookie must be script-readable")
	}
	if csrf.Value != bundle.CSRFToken {
		t.Fatal("CSRF cookie does not carry the CSRF token")
	}
	if got, want := csrf.MaxAge, int((24*time.Hour)/time.Second); got != want {
		t.Fatalf("CSRF cookie MaxAge = %d, want %d", got, want)
	}

	// Development mode: no Secure attribute.
	for _, c := range cookies {
		if c.Secure {
			t.Fatalf("cookie %q Secure = true outside production mode", c.Name)
		}
		if c.SameSite != http.SameSiteLaxMode {
			t.Fatalf("cookie %q SameSite = %d, want Lax", c.Name, c.SameSite)
		}
	}
}

func TestCookiesSecureInProduction(t *testing.T) {
	provider := newFakeProvider(t)
	cfg := engineTestConfig()
	cfg.Security.ProductionMode = true
	engine, _, cleanup := buildTestEngine(t, cfg, provider)
	defer cleanup()

	bundle := loginTestUser(t, engine, provider)
	for _, c := range engine.Cookies(bundle) {
		if !c.Secure {
			t.Fatalf("cookie %q Secure = false in production mode", c.Name)
		}
	}
}

func TestCookiesNilBundle(t *testing.T) {
	provider := newFakeProvider(t)
	engine, _, cleanup := buildTestEngine(t, engineTestConfig(), provider)
	defer cleanup()

	if cookies := engine.Cookies(nil); cookies != nil {
		t.Fatalf("Cookies(nil) = %v, want nil", cookies)
	}
}

func TestClearCookiesExpireEverything(t *testing.T) {
	provider := newFakeProvider(t)
	engine, _, cleanup := buildTestEngine(t, engineTestConfig(), provider)
	defer cleanup()

	cookies := engine.ClearCookies()
	if len(cookies) != 3 {
		t.Fatalf("cookie count = %d, want 3", len(cookies))
	}
	for _, c := range cookies {
		if c.MaxAge != -1 {
			t.Fatalf("cookie %q MaxAge = %d, want -1", c.Name, c.MaxAge)
		}
		if c.Value != "" {
			t.Fatalf("cookie %q value not cleared", c.Name)
		}
	}

	refresh := cookieByName(t, cookies, "refresh_token")
	if refresh.Path != "/auth/refresh" {
		t.Fatalf("clearing refresh cookie with path %q cannot overwrite the scoped original", refresh.Path)
	}
}

func TestCSRFTokensAreUnique(t *testing.T) {
	provider := newFakeProvider(t)
	provider.putUser("u1", "alice@example.com", "correct-horse", "admin")
	engine, _, cleanup := buildTestEngine(t, engineTestConfig(), provider)
	defer cleanup()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		bundle := loginTestUser(t, engine, provider)
		if seen[bundle.CSRFToken] {
			t.Fatal("duplicate CSRF token issued")
		}
		seen[bundle.CSRFToken] = true
	}
}
