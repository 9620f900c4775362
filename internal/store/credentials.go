package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/metoffice-weather/internal/weather"
)

// DefaultKeyName is the Redis key holding the Met Office API key.
const DefaultKeyName = "metoffice:apikey"

// RedisKeyStore persists the API key in Redis.
type RedisKeyStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisKeyStore creates a key store on client. An empty key uses DefaultKeyName.
func NewRedisKeyStore(client redis.Cmdable, key string) *RedisKeyStore {
	if key == "" {
		key = DefaultKeyName
	}
	return &RedisKeyStore{client: client, key: key}
}

// APIKey returns the stored key, or "" when none is stored.
func (s *RedisKeyStore) APIKey(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// SetAPIKey stores key without expiry.
func (s *RedisKeyStore) SetAPIKey(ctx context.Context, key string) error {
	return s.client.Set(ctx, s.key, key, 0).Err()
}

// SeedAPIKey stores key only if none is stored yet. It reports whether the key was written.
func (s *RedisKeyStore) SeedAPIKey(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	return s.client.SetNX(ctx, s.key, key, 0).Result()
}

var _ weather.KeyStore = (*RedisKeyStore)(nil)
