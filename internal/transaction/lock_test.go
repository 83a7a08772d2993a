package transaction

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireAndReleaseLock(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}

	// Second acquisition must fail while the lock is held.
	if _, err := AcquireLock(dir); !errors.Is(err, ErrLockExists) {
		t.Errorf("second AcquireLock error = %v, want ErrLockExists", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	// Released lock can be re-acquired.
	lock2, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock after release: %v", err)
	}
	lock2.Release()
}

func TestStaleLockIsReplaced(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, "getpurs.lock")

	if err := os.WriteFile(lockPath, []byte("pid=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-StaleLockThreshold - time.Minute)
	if err := os.Chtimes(lockPath, old, old); err != nil {
		t.Fatal(err)
	}

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock over stale lock: %v", err)
	}
	lock.Release()
}

func TestRefreshKeepsLockFresh(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	defer lock.Release()

	// Age the lock past the threshold, then refresh it.
	lockPath := filepath.Join(dir, "getpurs.lock")
	old := time.Now().Add(-StaleLockThreshold - time.Minute)
	if err := os.Chtimes(lockPath, old, old); err != nil {
		t.Fatal(err)
	}
	if err := lock.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	stale, err := isLockStale(lockPath)
	if err != nil {
		t.Fatalf("isLockStale: %v", err)
	}
	if stale {
		t.Error("lock still stale after Refresh")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	lock, err := AcquireLock(t.TempDir())
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
}
