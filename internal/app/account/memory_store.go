/*
Package account is the credential store: persisted user accounts with
hashed passwords.

This file implements the Store interface in process memory. It backs
the handler tests; production deployments use the PostgreSQL store.
*/
package account

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps accounts in a mutex-guarded map keyed by username.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
	}
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, acc Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[acc.Username]; exists {
		return ErrAlreadyExists
	}

	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now()
	}
	s.accounts[acc.Username] = acc
	return nil
}

// GetByUsername implements Store.
func (s *MemoryStore) GetByUsername(ctx context.Context, username string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &acc, nil
}

// UpdateAvatar implements Store.
func (s *MemoryStore) UpdateAvatar(ctx context.Context, username, avatar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return ErrNotFound
	}
	acc.Avatar = avatar
	s.accounts[username] = acc
	return nil
}
