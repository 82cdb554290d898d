/*
Package account is the credential store: persisted user accounts with
hashed passwords.

This file implements the Store interface on the PostgreSQL pool.
*/
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gemchat/internal/app/db"
)

// PostgresStore persists accounts in the accounts table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, acc Account) error {
	const query = `
		INSERT INTO accounts (username, avatar, name, password_hash)
		VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, query, acc.Username, acc.Avatar, acc.Name, acc.PasswordHash)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByUsername implements Store.
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*Account, error) {
	const query = `
		SELECT username, avatar, name, password_hash, created_at
		FROM accounts
		WHERE username = $1`

	var acc Account
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&acc.Username,
		&acc.Avatar,
		&acc.Name,
		&acc.PasswordHash,
		&acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	return &acc, nil
}

// UpdateAvatar implements Store.
func (s *PostgresStore) UpdateAvatar(ctx context.Context, username, avatar string) error {
	const query = `
		UPDATE accounts
		SET avatar = $2
		WHERE username = $1`

	tag, err := s.pool.Exec(ctx, query, username, avatar)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
