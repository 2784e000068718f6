package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"jobkaart/internal/config"
	"jobkaart/internal/port"
)

const keyPrefix = "jobkaart:idempotency:"

type store struct {
	client *goredis.Client
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

// NewStore creates a Redis-backed IdempotencyStore.
func NewStore(client *goredis.Client) port.IdempotencyStore {
	return &store{client: client}
}

// MarkProcessed uses SETNX so concurrent deliveries of the same key race on
// a single atomic write.
func (s *store) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redisIdempotency.MarkProcessed: %w", err)
	}
	return ok, nil
}

func (s *store) Forget(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redisIdempotency.Forget: %w", err)
	}
	return nil
}
