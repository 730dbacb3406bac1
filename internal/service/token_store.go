package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevocationStore remembers revoked token ids until the token would have expired anyway.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	UserTokenRevoker
}

// UserTokenRevoker invalidates every token issued to a user before a cutoff.
// Used when a role change or deletion makes the role claim stale.
type UserTokenRevoker interface {
	RevokeUser(ctx context.Context, userID uint, at time.Time, ttl time.Duration) error
	RevokedBefore(ctx context.Context, userID uint) (time.Time, error)
}

type redisTokenStore struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenStore stores revocations as expiring redis keys.
func NewRedisTokenStore(client *redis.Client, prefix string) TokenRevocationStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "scholartrack:revoked"
	}
	return &redisTokenStore{client: client, prefix: prefix}
}

func (s *redisTokenStore) key(tokenID string) string {
	return s.prefix + ":" + tokenID
}

func (s *redisTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" {
		return errors.New("token id is required")
	}
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(tokenID), "1", ttl).Err()
}

func (s *redisTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	count, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *redisTokenStore) userKey(userID uint) string {
	return s.prefix + ":user:" + strconv.FormatUint(uint64(userID), 10)
}

// RevokeUser stores the cutoff with second precision, the resolution of the iat claim.
// ttl should be the token lifetime; older tokens have expired by the time the key does.
func (s *redisTokenStore) RevokeUser(ctx context.Context, userID uint, at time.Time, ttl time.Duration) error {
	if userID == 0 {
		return errors.New("user id is required")
	}
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.userKey(userID), at.Unix(), ttl).Err()
}

func (s *redisTokenStore) RevokedBefore(ctx context.Context, userID uint) (time.Time, error) {
	value, err := s.client.Get(ctx, s.userKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return time.Unix(value, 0).UTC(), nil
}
