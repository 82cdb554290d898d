package session

import (
	"context"
	"testing"
	"time"

	"gemchat/internal/app/user"
)

func TestCreateAndGet(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	defer store.Close()
	ctx := context.Background()

	alice := user.User{Username: "alice", Avatar: "cat", Name: "Alice"}

	token, err := store.Create(ctx, alice)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected identity, got nil")
	}
	if *got != alice {
		t.Errorf("expected %+v, got %+v", alice, *got)
	}
}

func TestGetUnknownToken(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	defer store.Close()

	got, err := store.Get(context.Background(), "0123456789abcdefghijABCDEFGHIJkl")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil identity for unknown token, got %+v", got)
	}
}

func TestExpiryAfterInactivity(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	token, err := store.Create(ctx, user.User{Username: "alice"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	now = now.Add(6 * time.Minute)

	got, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Errorf("expected expired session, got %+v", got)
	}
}

func TestSlidingWindowRefreshOnGet(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	token, err := store.Create(ctx, user.User{Username: "alice"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Touch the session every 4 minutes; it must outlive the plain TTL.
	for i := 0; i < 3; i++ {
		now = now.Add(4 * time.Minute)
		got, err := store.Get(ctx, token)
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if got == nil {
			t.Fatalf("session expired despite activity at step %d", i)
		}
	}
}

func TestDelete(t *testing.T) {
	store := NewMemoryStore(5 * time.Minute)
	defer store.Close()
	ctx := context.Background()

	token, err := store.Create(ctx, user.User{Username: "alice"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := store.Delete(ctx, token); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	got, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}

	// Deleting again must stay a no-op.
	if err := store.Delete(ctx, token); err != nil {
		t.Errorf("second Delete returned error: %v", err)
	}
}
