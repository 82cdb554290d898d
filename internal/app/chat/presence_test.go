package chat

import (
	"testing"

	"gemchat/internal/app/user"
)

func TestPresenceAddAndSnapshot(t *testing.T) {
	p := NewPresence()

	p.Add(user.User{Username: "alice", Avatar: "a.png", Name: "Alice"})
	p.Add(user.User{Username: "bob", Avatar: "b.png", Name: "Bob"})

	snapshot := p.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snapshot))
	}

	alice, ok := snapshot["alice"]
	if !ok {
		t.Fatal("expected alice in snapshot")
	}
	if alice.Avatar != "a.png" || alice.Name != "Alice" {
		t.Fatalf("unexpected alice entry: %+v", alice)
	}
}

func TestPresenceLastWriteWins(t *testing.T) {
	p := NewPresence()

	p.Add(user.User{Username: "alice", Avatar: "old.png", Name: "Alice"})
	p.Add(user.User{Username: "alice", Avatar: "new.png", Name: "Alice"})

	if p.Size() != 1 {
		t.Fatalf("expected 1 entry after re-add, got %d", p.Size())
	}

	if got := p.Snapshot()["alice"].Avatar; got != "new.png" {
		t.Fatalf("expected latest avatar to win, got %q", got)
	}
}

func TestPresenceRemoveMissingIsNoop(t *testing.T) {
	p := NewPresence()

	p.Remove("ghost")

	if p.Size() != 0 {
		t.Fatalf("expected empty registry, got %d entries", p.Size())
	}
}

func TestPresenceSnapshotIsDecoupled(t *testing.T) {
	p := NewPresence()
	p.Add(user.User{Username: "alice", Name: "Alice"})

	snapshot := p.Snapshot()
	p.Remove("alice")

	if len(snapshot) != 1 {
		t.Fatal("snapshot should not observe later removals")
	}
}
