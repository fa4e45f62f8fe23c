package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "questlog"

// RedisStore keeps each collection in one Redis hash
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisClient parses redisURL and verifies the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// NewRedisStore creates a store over client; an empty prefix uses "questlog"
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) hashKey(c Collection) string {
	return fmt.Sprintf("%s:%s", s.prefix, c)
}

// Get reads one field from the collection hash
func (s *RedisStore) Get(ctx context.Context, collection Collection, key string) ([]byte, bool, error) {
	val, err := s.client.HGet(ctx, s.hashKey(collection), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s/%s: %w", collection, key, err)
	}
	return val, true, nil
}

// Set writes one field of the collection hash
func (s *RedisStore) Set(ctx context.Context, collection Collection, key string, value []byte) error {
	if err := s.client.HSet(ctx, s.hashKey(collection), key, value).Err(); err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, key, err)
	}
	return nil
}

// Delete removes one field of the collection hash
func (s *RedisStore) Delete(ctx context.Context, collection Collection, key string) error {
	if err := s.client.HDel(ctx, s.hashKey(collection), key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, key, err)
	}
	return nil
}

// Clear drops the whole collection hash
func (s *RedisStore) Clear(ctx context.Context, collection Collection) error {
	if err := s.client.Del(ctx, s.hashKey(collection)).Err(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", collection, err)
	}
	return nil
}

// List returns every record of the collection
func (s *RedisStore) List(ctx context.Context, collection Collection) (map[string][]byte, error) {
	vals, err := s.client.HGetAll(ctx, s.hashKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	out := make(map[string][]byte, len(vals))
	for k, v := range vals {
		out[k] = []byte(v)
	}
	return out, nil
}

// HealthCheck pings Redis
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
