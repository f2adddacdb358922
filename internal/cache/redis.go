package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RedisStore adapts a shared Redis instance to the Store interface.
// All TTL handling is delegated to Redis; expired entries simply stop
// existing. Failures are returned verbatim; there is no serve-stale or
// bypass-on-error behavior here.
type RedisStore struct {
	rdb        *redis.Client
	defaultTTL time.Duration
	logger     zerolog.Logger
}

// NewRedisStore creates a Store backed by the given Redis client. defaultTTL
// applies whenever a caller sets with TTLDefault; zero means such entries do
// not expire.
func NewRedisStore(rdb *redis.Client, defaultTTL time.Duration) *RedisStore {
	if rdb == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		rdb:        rdb,
		defaultTTL: defaultTTL,
		logger:     log.With().Str("component", "cache.redis").Logger(),
	}
}

// Ping verifies connectivity to Redis.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Get implements Store.Get.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		storeErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Int("bytes", len(b)).Msg("get hit")
	return b, nil
}

// Set implements Store.Set.
func (s *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = s.defaultTTL
	}
	// go-redis treats ttl == 0 as "no expiration", matching NoExpiry.
	if err := s.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		storeErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Dur("ttl", ttl).Msg("set")
	return nil
}

// Delete implements Store.Delete. Redis DEL on an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		storeErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Ensure RedisStore implements Store at compile time.
var _ Store = (*RedisStore)(nil)
