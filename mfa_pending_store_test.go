package goSession

import (
	"context"
	"errors"
	"testing"
	"time"
)

func pendingTestRecord(ttl time.Duration) *mfaPendingRecord {
	return &mfaPendingRecord{
		UserID:       "u1",
		FactorID:     "totp-1",
		RefreshToken: "refresh-u1-1",
		ExpiresAt:    time.Now().Add(ttl).Unix(),
	}
}

func TestMFAPendingStoreRoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMFAPendingStore(rdb, "mfp")
	ctx := context.Background()

	record := pendingTestRecord(5 * time.Minute)
	if err := store.Save(ctx, "access-1", record, 5*time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Get(ctx, "access-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserID != "u1" || got.FactorID != "totp-1" || got.RefreshToken != "refresh-u1-1" {
		t.Fatalf("got %+v, want %+v", got, record)
	}
	if got.Attempts != 0 {
		t.Fatalf("fresh record attempts = %d, want 0", got.Attempts)
	}
}

func TestMFAPendingStoreExpiredRecordIsDeleted(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMFAPendingStore(rdb, "mfp")
	ctx := context.Background()

	// Embedded expiry in the past while the Redis key is still alive.
	record := pendingTestRecord(-time.Minute)
	if err := store.Save(ctx, "access-1", record, 5*time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := store.Get(ctx, "access-1"); !errors.Is(err, errMFAPendingExpired) {
		t.Fatalf("Get error = %v, want errMFAPendingExpired", err)
	}

	// The lazy delete removed the key: the next read is a plain miss.
	if _, err := store.Get(ctx, "access-1"); !errors.Is(err, errMFAPendingNotFound) {
		t.Fatalf("second Get error = %v, want errMFAPendingNotFound", err)
	}
}

func TestMFAPendingStoreDeleteReportsConsumption(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMFAPendingStore(rdb, "mfp")
	ctx := context.Background()

	if err := store.Save(ctx, "access-1", pendingTestRecord(5*time.Minute), 5*time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	deleted, err := store.Delete(ctx, "access-1")
	if err != nil || !deleted {
		t.Fatalf("Delete = (%v, %v), want (true, nil)", deleted, err)
	}
	deleted, err = store.Delete(ctx, "access-1")
	if err != nil || deleted {
		t.Fatalf("second Delete = (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestMFAPendingStoreRecordFailureCountsAndCaps(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMFAPendingStore(rdb, "mfp")
	ctx := context.Background()

	if err := store.Save(ctx, "access-1", pendingTestRecord(5*time.Minute), 5*time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	const maxAttempts = 3
	for i := 1; i < maxAttempts; i++ {
		exceeded, err := store.RecordFailure(ctx, "access-1", maxAttempts)
		if err != nil {
			t.Fatalf("RecordFailure %d failed: %v", i, err)
		}
		if exceeded {
			t.Fatalf("RecordFailure %d exceeded early", i)
		}

		got, err := store.Get(ctx, "access-1")
		if err != nil {
			t.Fatalf("Get after failure %d: %v", i, err)
		}
		if int(got.Attempts) != i {
			t.Fatalf("attempts = %d, want %d", got.Attempts, i)
		}
	}

	exceeded, err := store.RecordFailure(ctx, "access-1", maxAttempts)
	if err != nil {
		t.Fatalf("final RecordFailure failed: %v", err)
	}
	if !exceeded {
		t.Fatal("final RecordFailure did not report exceeded")
	}

	// Exceeding the cap destroys the handshake.
	if _, err := store.Get(ctx, "access-1"); !errors.Is(err, errMFAPendingNotFound) {
		t.Fatalf("Get after cap error = %v, want errMFAPendingNotFound", err)
	}
}

func TestMFAPendingStoreRecordFailureMissingRecord(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	store := newMFAPendingStore(rdb, "mfp")
	if _, err := store.RecordFailure(context.Background(), "absent", 5); !errors.Is(err, errMFAPendingNotFound) {
		t.Fatalf("RecordFailure error = %v, want errMFAPendingNotFound", err)
	}
}
