/*
Package chat contains the core logic of the relay: live WebSocket
connections, the presence registry, and the event fan-out between them.

This file defines the Presence registry, the in-memory mapping of
currently-online identities.
*/
package chat

import (
	"sync"

	"gemchat/internal/app/user"
	"gemchat/internal/pkg/metrics"
)

// Presence tracks which identities are online right now. Entries are
// keyed by username; a user holds at most one entry no matter how many
// connections they have open, with the latest connection winning.
type Presence struct {
	mu      sync.RWMutex
	entries map[string]PresenceInfo
}

// NewPresence creates an empty presence registry.
func NewPresence() *Presence {
	return &Presence{
		entries: make(map[string]PresenceInfo),
	}
}

// Add inserts or overwrites the entry for the identity's username.
func (p *Presence) Add(identity user.User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.entries[identity.Username] = identityInfo(identity)
	metrics.OnlineUsers.Set(float64(len(p.entries)))
}

// Remove deletes the entry for username. Removing an absent username
// is a no-op.
func (p *Presence) Remove(username string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.entries, username)
	metrics.OnlineUsers.Set(float64(len(p.entries)))
}

// Snapshot returns a copy of the current mapping. The copy is
// decoupled from later mutations.
func (p *Presence) Snapshot() map[string]PresenceInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snapshot := make(map[string]PresenceInfo, len(p.entries))
	for username, info := range p.entries {
		snapshot[username] = info
	}

	return snapshot
}

// Size returns the number of online identities.
func (p *Presence) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.entries)
}
