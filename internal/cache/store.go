// Package cache implements the caching and invalidation coordinator used by
// the job-board services: deterministic key construction, a remote TTL
// key/value store behind a small interface, a tag index that groups an
// unbounded space of derived keys under coarse invalidation scopes, and a
// read-through orchestrator built on top of the two.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in the store
	// (or its entry already expired).
	ErrCacheMiss = errors.New("cache miss")
)

const (
	// NoExpiry stores an entry without a TTL, overriding the store default.
	NoExpiry time.Duration = 0

	// TTLDefault defers to the store's configured default TTL.
	TTLDefault time.Duration = -1
)

// Store is the minimal contract against the shared remote cache.
// Implementations: RedisStore (production) and MemoryStore (tests, dev).
//
// A stored nil/empty payload is indistinguishable from a miss; callers that
// must cache "no data" have to wrap it in a non-empty envelope.
type Store interface {
	// Get returns the stored payload or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores the payload. ttl > 0 sets a finite TTL, NoExpiry stores
	// without expiry, TTLDefault applies the store's configured default.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
