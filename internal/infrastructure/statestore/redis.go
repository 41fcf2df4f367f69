package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"theme-images-manager/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "oauth_state:"

// RedisStateStore shares install nonces between instances
type RedisStateStore struct {
	client *redis.Client
}

// NewRedisStateStore connects to the given redis:// URL and pings it
func NewRedisStateStore(ctx context.Context, redisURL string) (*RedisStateStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStateStore{client: client}, nil
}

// Save stores the nonce with a TTL
func (s *RedisStateStore) Save(ctx context.Context, state *domain.InstallState, ttl time.Duration) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+state.State, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes the nonce
func (s *RedisStateStore) Consume(ctx context.Context, state string) (*domain.InstallState, error) {
	payload, err := s.client.GetDel(ctx, keyPrefix+state).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume state: %w", err)
	}

	var out domain.InstallState
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &out, nil
}

// Close releases the connection pool
func (s *RedisStateStore) Close() error {
	return s.client.Close()
}
