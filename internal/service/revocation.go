package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevoker keeps revoked token ids in redis until the token would have
// expired anyway.
type RedisRevoker struct {
	client    *redis.Client
	keyPrefix string
}

var _ TokenRevoker = (*RedisRevoker)(nil)

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{client: client, keyPrefix: "revoked_token"}
}

func (r *RedisRevoker) key(tokenID string) string {
	return r.keyPrefix + ":" + tokenID
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(tokenID), 1, ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := r.client.Get(ctx, r.key(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
