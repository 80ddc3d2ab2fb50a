package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrTokenNotFound = errors.New("reset token not found or expired")

type ResetTokenRepository interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	// Consume returns the user id for token and deletes it.
	Consume(ctx context.Context, token string) (string, error)
}

type resetTokenRepository struct {
	client *redis.Client
}

func NewResetTokenRepository(client *redis.Client) ResetTokenRepository {
	return &resetTokenRepository{client: client}
}

func resetKey(token string) string {
	return "password_reset:" + token
}

func (r *resetTokenRepository) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, resetKey(token), userID, ttl).Err()
}

func (r *resetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	userID, err := r.client.GetDel(ctx, resetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
