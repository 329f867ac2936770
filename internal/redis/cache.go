package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore keeps short-lived opaque values, such as replayable HTTP responses.
type CacheStore struct {
	client *redis.Client
	prefix string
}

// NewCacheStore creates a CacheStore whose keys share prefix.
func NewCacheStore(client *redis.Client, prefix string) *CacheStore {
	return &CacheStore{client: client, prefix: prefix}
}

// Get returns the value stored under key. found is false on a miss.
func (s *CacheStore) Get(ctx context.Context, key string) (data []byte, found bool, err error) {
	data, err = s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key for ttl.
func (s *CacheStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, data, ttl).Err()
}
