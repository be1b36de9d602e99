package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetTokenStore tracks consumption of reset tokens so each one authorizes
// at most one password change. Keys are the token's jti, kept only for the
// token's remaining lifetime.
type ResetTokenStore interface {
	// Consume marks jti as used. Returns ErrResetTokenUsed when the jti
	// was already consumed.
	Consume(ctx context.Context, jti string, ttl time.Duration) error
}

var ErrResetTokenUsed = errors.New("reset token already used")

// RedisResetStore implements ResetTokenStore on a shared redis instance.
type RedisResetStore struct {
	rdb *redis.Client
}

func NewRedisResetStore(rdb *redis.Client) *RedisResetStore {
	return &RedisResetStore{rdb: rdb}
}

func (s *RedisResetStore) Consume(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("jti is required")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	key := fmt.Sprintf("reset:used:%s", jti)
	ok, err := s.rdb.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrResetTokenUsed
	}
	return nil
}

// MemoryResetStore is a test double with the same consume-once contract.
type MemoryResetStore struct {
	used map[string]struct{}
}

func NewMemoryResetStore() *MemoryResetStore {
	return &MemoryResetStore{used: make(map[string]struct{})}
}

func (s *MemoryResetStore) Consume(ctx context.Context, jti string, ttl time.Duration) error {
	_ = ctx
	_ = ttl
	if _, ok := s.used[jti]; ok {
		return ErrResetTokenUsed
	}
	s.used[jti] = struct{}{}
	return nil
}
