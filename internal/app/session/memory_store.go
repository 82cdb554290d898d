/*
Package session manages the opaque sign-in sessions consumed by the
relay.

This file implements the Store interface in process memory for
single-instance deployments and tests. A background sweep reclaims
expired entries.
*/
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gemchat/internal/app/user"
	"gemchat/internal/pkg/randx"
)

// memoryEntry pairs an identity with its current expiry.
type memoryEntry struct {
	identity user.User
	expires  time.Time
}

// MemoryStore keeps sessions in a mutex-guarded map.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration

	// now is swappable in tests.
	now func() time.Time

	stop chan struct{}
}

// NewMemoryStore creates an in-memory session store with the given
// sliding TTL and starts the expiry sweep.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	go s.cleanupExpiredEntries()

	return s
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, identity user.User) (string, error) {
	token, err := randx.SessionToken()
	if err != nil {
		return "", fmt.Errorf("session: token generation failed: %w", err)
	}

	s.mu.Lock()
	s.sessions[token] = memoryEntry{
		identity: identity,
		expires:  s.now().Add(s.ttl),
	}
	s.mu.Unlock()

	return token, nil
}

// Get implements Store. A hit re-arms the sliding window.
func (s *MemoryStore) Get(ctx context.Context, token string) (*user.User, error) {
	if !randx.IsValidSessionToken(token) {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[token]
	if !ok {
		return nil, nil
	}

	if s.now().After(entry.expires) {
		delete(s.sessions, token)
		return nil, nil
	}

	entry.expires = s.now().Add(s.ttl)
	s.sessions[token] = entry

	identity := entry.identity
	return &identity, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// Close implements Store and stops the expiry sweep.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	return nil
}

// cleanupExpiredEntries drops expired sessions once a minute.
func (s *MemoryStore) cleanupExpiredEntries() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			now := s.now()
			for token, entry := range s.sessions {
				if now.After(entry.expires) {
					delete(s.sessions, token)
				}
			}
			s.mu.Unlock()

		case <-s.stop:
			return
		}
	}
}
