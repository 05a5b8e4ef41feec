package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/maubry/ouvra/pkg/models"
)

// RedisStore persists workflow configurations as JSON blobs in Redis, one
// key per configuration.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore creates a Redis-backed config store from a connection URL.
func NewRedisStore(redisURL string, logger *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisStore{client: redis.NewClient(opts), logger: logger}, nil
}

// NewRedisStoreWithClient wraps an existing client, for tests.
func NewRedisStoreWithClient(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

// Load reads the configuration stored under key. Missing keys and corrupt
// blobs both yield (nil, nil).
func (rs *RedisStore) Load(ctx context.Context, key string) (*models.WorkflowConfig, error) {
	body, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read workflow config %s: %w", key, err)
	}

	return DecodeConfig(rs.logger, body), nil
}

// Save writes the configuration under key, without expiry.
func (rs *RedisStore) Save(ctx context.Context, key string, cfg *models.WorkflowConfig) error {
	body, err := EncodeConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow config %s: %w", key, err)
	}

	if err := rs.client.Set(ctx, key, body, 0).Err(); err != nil {
		return fmt.Errorf("failed to store workflow config %s: %w", key, err)
	}

	return nil
}

// Close releases the underlying client.
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
