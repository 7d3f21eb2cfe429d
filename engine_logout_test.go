package goSession

import (
	"context"
	"errors"
	"testing"
)

func TestLogoutEvictsCacheAndRefresh(t *testing.T) {
	provider := newFakeProvider(t)
	engine, _, cleanup := buildTestEngine(t, engineTestConfig(), provider)
	defer cleanup()

	bundle := loginTestUser(t, engine, provider)
	ctx := context.Background()

	if err := engine.Logout(ctx, bundle.AccessToken, bundle.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// Cached identity is gone: the next resolve reaches the provider.
	before := provider.verifyCalls.Load()
	if _, err := engine.Resolve(ctx, bundle.AccessToken); err != nil {
		t.Fatalf("Resolve after logout failed: %v", err)
	}
	if got := provider.verifyCalls.Load(); got != before+1 {
		t.Fatalf("provider verify calls = %d, want %d", got, before+1)
	}

	// Refresh token is revoked.
	if _, err := engine.Refresh(ctx, bundle.RefreshToken); !errors.Is(err, ErrRotationExpired) {
		t.Fatalf("Refresh after logout error = %v, want ErrRotationExpired", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	provider := newFakeProvider(t)
	engine, _, cleanup := buildTestEngine(t, engineTestConfig(), provider)
	defer cleanup()

	bundle := loginTestUser(t, engine, provider)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := engine.Logout(ctx, bundle.AccessToken, bundle.RefreshToken); err != nil {
			t.Fatalf("Logout %d failed: %v", i, err)
		}
	}
}

func TestLogoutRequiresSomeToken(t *testing.T) {
	provider := newFakeProvider(t)
	engine, _, cleanup := buildTestEngine(t, engineTestConfig(), provider)
	defer cleanup()

	if err := engine.Logout(context.Background(), "", ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("Logout error = %v, want ErrMissingToken", err)
	}
}

func TestLogoutWithOnlyAccessToken(t *testing.T) {
	provider := newFakeProvider(t)
	engine, _, cleanup := buildTestEngine(t, engineTestConfig(), provider)
	defer cleanup()

	bundle := loginTestUser(t, engine, provider)
	ctx := context.Background()

	if err := engine.Logout(ctx, bundle.AccessToken, ""); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// Without the refresh token, revocation does not happen; rotation still
	// works until the record is consumed or expires.
	if _, err := engine.Refresh(ctx, bundle.RefreshToken); err != nil {
		t.Fatalf("Refresh after access-only logout failed: %v", err)
	}
}
