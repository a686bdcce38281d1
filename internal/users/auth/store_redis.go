// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ultimatemercer/identity/internal/platform/constants"
)

// # Volatile Token Store

// RedisTokenStore implements [VerificationTokenRepository] and
// [PendingTwoFactorRepository]. Values expire on their own; keys carry
// token hashes, never raw tokens.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a Redis-backed volatile token store.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

var (
	_ VerificationTokenRepository = (*RedisTokenStore)(nil)
	_ PendingTwoFactorRepository  = (*RedisTokenStore)(nil)
)

/*
SetVerificationToken stores the token hash with its owning Auth ID and TTL.

Parameters:
  - context: context.Context
  - tokenHash: string
  - authID: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisTokenStore) SetVerificationToken(context context.Context, tokenHash, authID string, ttl time.Duration) error {
	key := constants.RedisPrefixVerifyToken + tokenHash

	if err := repository.client.Set(context, key, authID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_verify_token_set_failed: %w", err)
	}
	return nil
}

/*
TakeVerificationToken resolves the token and deletes it in one round trip,
so a token can be redeemed once.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - string: Auth ID
  - error: VerificationTokenInvalid or connectivity errors
*/
func (repository *RedisTokenStore) TakeVerificationToken(context context.Context, tokenHash string) (string, error) {
	key := constants.RedisPrefixVerifyToken + tokenHash

	authID, err := repository.client.GetDel(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrVerificationTokenInvalid
		}
		return "", fmt.Errorf("redis_verify_token_take_failed: %w", err)
	}
	return authID, nil
}

// SetPendingSecret stores a TOTP secret awaiting confirmation.
func (repository *RedisTokenStore) SetPendingSecret(context context.Context, authID, secret string, ttl time.Duration) error {
	key := constants.RedisPrefixPendingTwoFactor + authID

	if err := repository.client.Set(context, key, secret, ttl).Err(); err != nil {
		return fmt.Errorf("redis_pending_2fa_set_failed: %w", err)
	}
	return nil
}

// PendingSecret returns the pending TOTP secret, or "" when none exists.
func (repository *RedisTokenStore) PendingSecret(context context.Context, authID string) (string, error) {
	key := constants.RedisPrefixPendingTwoFactor + authID

	secret, err := repository.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis_pending_2fa_get_failed: %w", err)
	}
	return secret, nil
}

// ClearPendingSecret removes the pending TOTP secret.
func (repository *RedisTokenStore) ClearPendingSecret(context context.Context, authID string) error {
	key := constants.RedisPrefixPendingTwoFactor + authID

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_pending_2fa_delete_failed: %w", err)
	}
	return nil
}
