package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type revocationRedis interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RevocationStore keeps logged-out token ids in Redis until the token
// would have expired anyway.
type RevocationStore struct {
	redis revocationRedis
}

func NewRevocationStore(client revocationRedis) *RevocationStore {
	return &RevocationStore{redis: client}
}

func revocationKey(tokenID string) string {
	return "revoked_token:" + tokenID
}

func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, revocationKey(tokenID), 1, ttl).Err()
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.redis.Exists(ctx, revocationKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
