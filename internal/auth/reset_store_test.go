package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisResetStore_ConsumeOnce(t *testing.T) {
	store := NewRedisResetStore(newTestRedis(t))
	ctx := context.Background()

	if err := store.Consume(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if err := store.Consume(ctx, "jti-1", time.Minute); !errors.Is(err, ErrResetTokenUsed) {
		t.Fatalf("expected ErrResetTokenUsed, got %v", err)
	}

	// A different jti is unaffected.
	if err := store.Consume(ctx, "jti-2", time.Minute); err != nil {
		t.Fatalf("independent consume: %v", err)
	}
}

func TestRedisResetStore_RequiresJTI(t *testing.T) {
	store := NewRedisResetStore(newTestRedis(t))
	if err := store.Consume(context.Background(), "", time.Minute); err == nil {
		t.Fatalf("expected error for empty jti")
	}
}
