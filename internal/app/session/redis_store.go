/*
Package session manages the opaque sign-in sessions consumed by the
relay.

This file implements the Store interface on Redis. Each session is a
hash under the "session:" prefix whose TTL is re-armed on every lookup,
giving the sliding inactivity window for free.
*/
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gemchat/internal/app/user"
	"gemchat/internal/pkg/randx"
)

// keyPrefix is the Redis key prefix for all session hashes.
const keyPrefix = "session:"

// RedisStore keeps sessions in Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("session: redis connection failed: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Create implements Store.
func (s *RedisStore) Create(ctx context.Context, identity user.User) (string, error) {
	token, err := randx.SessionToken()
	if err != nil {
		return "", fmt.Errorf("session: token generation failed: %w", err)
	}

	key := keyPrefix + token
	fields := map[string]interface{}{
		"username": identity.Username,
		"avatar":   identity.Avatar,
		"name":     identity.Name,
	}

	pipe := s.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("session: create failed: %w", err)
	}

	return token, nil
}

// Get implements Store. The TTL is re-armed whenever the session is found.
func (s *RedisStore) Get(ctx context.Context, token string) (*user.User, error) {
	if !randx.IsValidSessionToken(token) {
		return nil, nil
	}

	key := keyPrefix + token
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("session: lookup failed: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("session: ttl refresh failed: %w", err)
	}

	return &user.User{
		Username: fields["username"],
		Avatar:   fields["avatar"],
		Name:     fields["name"],
	}, nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
