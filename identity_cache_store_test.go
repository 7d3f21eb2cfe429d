package goSession

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIdentityCacheStoreRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newIdentityCacheStore(rdb, "sid")
	ctx := context.Background()

	identity := &Identity{UserID: "u1", Email: "alice@example.com", Role: "admin"}
	if err := store.Save(ctx, "tok-1", identity, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if *got != *identity {
		t.Fatalf("got %+v, want %+v", got, identity)
	}
}

func TestIdentityCacheStoreMiss(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newIdentityCacheStore(rdb, "sid")
	if _, err := store.Get(context.Background(), "absent"); !errors.Is(err, errIdentityNotCached) {
		t.Fatalf("Get error = %v, want errIdentityNotCached", err)
	}
}

func TestIdentityCacheStoreTTLExpiry(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newIdentityCacheStore(rdb, "sid")
	ctx := context.Background()

	identity := &Identity{UserID: "u1", Email: "a@b.c", Role: "user"}
	if err := store.Save(ctx, "tok-1", identity, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "tok-1"); !errors.Is(err, errIdentityNotCached) {
		t.Fatalf("Get after expiry error = %v, want errIdentityNotCached", err)
	}
}

func TestIdentityCacheStoreDelete(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newIdentityCacheStore(rdb, "sid")
	ctx := context.Background()

	identity := &Identity{UserID: "u1", Email: "a@b.c", Role: "user"}
	if err := store.Save(ctx, "tok-1", identity, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	deleted, err := store.Delete(ctx, "tok-1")
	if err != nil || !deleted {
		t.Fatalf("Delete = (%v, %v), want (true, nil)", deleted, err)
	}
	deleted, err = store.Delete(ctx, "tok-1")
	if err != nil || deleted {
		t.Fatalf("second Delete = (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestIdentityCacheStoreKeysAreHashed(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newIdentityCacheStore(rdb, "sid")
	ctx := context.Background()

	rawToken := "raw-jwt-value-that-must-not-appear-in-redis"
	identity := &Identity{UserID: "u1", Email: "a@b.c", Role: "user"}
	if err := store.Save(ctx, rawToken, identity, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	for _, key := range mr.Keys() {
		if strings.Contains(key, rawToken) {
			t.Fatalf("raw token leaked into redis key %q", key)
		}
	}
}
