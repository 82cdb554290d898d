/*
Package session manages the opaque sign-in sessions consumed by the
relay.

A session maps a random token, carried in a cookie, to a resolved
identity. Every successful lookup refreshes the sliding inactivity
window, mirroring a rolling session cookie.
*/
package session

import (
	"context"

	"gemchat/internal/app/user"
)

// CookieName is the name of the session cookie.
const CookieName = "gemchat_session"

// Store is the session persistence contract.
type Store interface {
	// Create stores a new session for identity and returns its token.
	Create(ctx context.Context, identity user.User) (string, error)

	// Get resolves a token to its identity and refreshes the sliding
	// expiry window. A missing or expired token yields (nil, nil).
	Get(ctx context.Context, token string) (*user.User, error)

	// Delete removes the session. Deleting an unknown token is a no-op.
	Delete(ctx context.Context, token string) error

	// Close releases any backend resources.
	Close() error
}
