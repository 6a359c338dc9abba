package redis

import (
	"context"
	"errors"

	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/tailview/community-service/internal/domain"
)

// CacheStore implements domain.CacheStore on redis. Keys carry their TTL at
// the blob level; absent and expired keys are indistinguishable, which is
// what the callers rely on.
type CacheStore struct {
	rdb *goredis.Client
}

func NewCacheStore(c *Client) *CacheStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &CacheStore{rdb: rdb}
}

func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.rdb == nil {
		return nil, errors.New("redis cache store not configured")
	}

	val, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, err
	}
	return val, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.rdb == nil {
		return errors.New("redis cache store not configured")
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *CacheStore) Delete(ctx context.Context, key string) error {
	if s.rdb == nil {
		return errors.New("redis cache store not configured")
	}
	return s.rdb.Del(ctx, key).Err()
}
