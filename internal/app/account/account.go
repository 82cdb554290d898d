/*
Package account is the credential store: persisted user accounts with
hashed passwords.

The relay never touches this package directly; it only ever sees the
resolved identity a session carries. Handlers use it for registration
and sign-in.
*/
package account

import (
	"context"
	"errors"
	"time"

	"gemchat/internal/app/user"
)

// ErrNotFound is returned when no account exists for a username.
var ErrNotFound = errors.New("account not found")

// ErrAlreadyExists is returned when the username is already registered.
var ErrAlreadyExists = errors.New("username already exists")

// Account is one persisted user record.
type Account struct {
	Username     string
	Avatar       string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity returns the account's public identity value.
func (a Account) Identity() user.User {
	return user.User{
		Username: a.Username,
		Avatar:   a.Avatar,
		Name:     a.Name,
	}
}

// Store is the credential persistence contract.
type Store interface {
	// Create inserts a new account. Returns ErrAlreadyExists when the
	// username is taken.
	Create(ctx context.Context, acc Account) error

	// GetByUsername fetches an account. Returns ErrNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// UpdateAvatar replaces the avatar reference on an account.
	UpdateAvatar(ctx context.Context, username, avatar string) error
}
