package transcript

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gemchat/internal/app/user"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()

	store, err := NewFileStore(filepath.Join(t.TempDir(), "transcript.jsonl"))
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	return store
}

func TestReadAllEmpty(t *testing.T) {
	store := newTestStore(t)

	msgs, err := store.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if msgs == nil {
		t.Fatal("expected non-nil empty slice, got nil")
	}
	if len(msgs) != 0 {
		t.Fatalf("expected empty transcript, got %d messages", len(msgs))
	}
}

func TestAppendRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := user.User{Username: "alice", Avatar: "cat", Name: "Alice"}
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	appended, err := store.Append(ctx, alice, "hello", at)
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if appended.ID == "" {
		t.Error("appended message has empty ID")
	}

	msgs, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	got := msgs[len(msgs)-1]
	if got.ID != appended.ID || got.User != alice || got.Content != "hello" {
		t.Errorf("last message %+v does not match appended %+v", got, appended)
	}
	if !got.Datetime.Equal(at) {
		t.Errorf("expected datetime %v, got %v", at, got.Datetime)
	}
}

func TestReplayOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := user.User{Username: "alice", Avatar: "cat", Name: "Alice"}
	bob := user.User{Username: "bob", Avatar: "dog", Name: "Bob"}

	t1 := time.Now().UTC()
	t2 := t1.Add(time.Second)

	if _, err := store.Append(ctx, alice, "hello", t1); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if _, err := store.Append(ctx, bob, "hi", t2); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	msgs, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].User.Username != "alice" || msgs[0].Content != "hello" {
		t.Errorf("first message out of order: %+v", msgs[0])
	}
	if msgs[1].User.Username != "bob" || msgs[1].Content != "hi" {
		t.Errorf("second message out of order: %+v", msgs[1])
	}
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			author := user.User{Username: fmt.Sprintf("user%d", w), Name: fmt.Sprintf("User %d", w)}
			for i := 0; i < perWriter; i++ {
				content := fmt.Sprintf("msg-%d-%d", w, i)
				if _, err := store.Append(ctx, author, content, time.Now()); err != nil {
					t.Errorf("Append returned error: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	msgs, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(msgs) != writers*perWriter {
		t.Fatalf("expected %d messages, got %d", writers*perWriter, len(msgs))
	}

	// Every append must be attributable to its author exactly once.
	seen := make(map[string]struct{}, len(msgs))
	for _, msg := range msgs {
		key := msg.User.Username + "/" + msg.Content
		if _, dup := seen[key]; dup {
			t.Fatalf("duplicate message in transcript: %q", key)
		}
		seen[key] = struct{}{}
	}

	// Per-writer order must be preserved even under interleaving.
	lastIndex := make(map[string]int)
	for _, msg := range msgs {
		var w, i int
		if _, err := fmt.Sscanf(msg.Content, "msg-%d-%d", &w, &i); err != nil {
			t.Fatalf("unexpected content %q", msg.Content)
		}
		if prev, ok := lastIndex[msg.User.Username]; ok && i <= prev {
			t.Fatalf("writer %s out of order: %d after %d", msg.User.Username, i, prev)
		}
		lastIndex[msg.User.Username] = i
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "transcript.jsonl")
	ctx := context.Background()

	first, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	author := user.User{Username: "alice", Name: "Alice"}
	if _, err := first.Append(ctx, author, "survives restarts", time.Now()); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	second, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}
	msgs, err := second.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "survives restarts" {
		t.Fatalf("transcript not preserved across reopen: %+v", msgs)
	}
}
