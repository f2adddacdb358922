package cache

import (
	"context"
	"sync"
	"time"
)

// memEntry stores a cached payload and its absolute expiration timestamp.
type memEntry struct {
	val       []byte
	expiresAt time.Time // zero means no expiration
}

// MemoryStore is a map-backed Store with per-entry TTL. It backs tests and
// local development; production uses RedisStore. Expired entries are dropped
// lazily on access (no background janitor).
type MemoryStore struct {
	mu         sync.RWMutex
	items      map[string]memEntry
	defaultTTL time.Duration
}

// now is a small indirection to allow test stubbing.
var now = time.Now

// NewMemoryStore constructs a MemoryStore. defaultTTL applies whenever a
// caller sets with TTLDefault; a zero defaultTTL means such entries do not
// expire.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		items:      make(map[string]memEntry),
		defaultTTL: defaultTTL,
	}
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return e.val, nil
}

// Set implements Store.Set.
func (s *MemoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = s.defaultTTL
	}
	var exp time.Time
	if ttl > 0 {
		exp = now().Add(ttl)
	}

	s.mu.Lock()
	s.items[key] = memEntry{val: val, expiresAt: exp}
	s.mu.Unlock()
	return nil
}

// Delete implements Store.Delete. Deleting an absent key is a no-op.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}

// Len returns the number of non-expired entries currently stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	nowTs := now()
	for _, e := range s.items {
		if e.expiresAt.IsZero() || nowTs.Before(e.expiresAt) {
			count++
		}
	}
	return count
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	s.items = make(map[string]memEntry)
	s.mu.Unlock()
}

// Ensure MemoryStore implements Store at compile time.
var _ Store = (*MemoryStore)(nil)
