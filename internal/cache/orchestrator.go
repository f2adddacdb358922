package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Orchestrator exposes the read-through and tagged-list operations the
// domain services consume. It holds no in-process locks and no state beyond
// the injected store: every operation is a round-trip to the shared cache.
//
// Store I/O failures propagate verbatim to the caller. A cache outage turns
// an otherwise-cached read into a hard failure unless the calling service
// adds its own fallback.
type Orchestrator struct {
	store Store
	tags  *TagIndex
}

// NewOrchestrator builds an Orchestrator over the given store.
func NewOrchestrator(store Store) *Orchestrator {
	if store == nil {
		panic("cache store cannot be nil")
	}
	return &Orchestrator{
		store: store,
		tags:  NewTagIndex(store),
	}
}

// Store exposes the underlying store, e.g. for the HTTP response cache
// middleware which shares the same key space.
func (o *Orchestrator) Store() Store {
	return o.store
}

// TrackKey registers key under tag without reading or writing the entry
// itself. Call sites use it to register HTTP-level mirror keys so that a
// later Invalidate reaches both cache layers.
func (o *Orchestrator) TrackKey(ctx context.Context, tag, key string) error {
	return o.tags.Track(ctx, tag, key)
}

// Invalidate deletes every key tracked under tag and clears the tag.
func (o *Orchestrator) Invalidate(ctx context.Context, tag string) error {
	return o.tags.Invalidate(ctx, tag)
}

// Delete removes a single key. Which keys a write must delete or invalidate
// is entirely the call site's responsibility.
func (o *Orchestrator) Delete(ctx context.Context, key string) error {
	return o.store.Delete(ctx, key)
}

// GetOrSet is the read-through primitive: return the cached value for key if
// present, otherwise invoke supplier, store its JSON-marshalled result with
// ttl, and return it.
//
// Concurrent overlapping misses on the same key are NOT deduplicated: two
// simultaneous callers may both invoke supplier and both write, last write
// wins. Suppliers must therefore be idempotent reads. A supplier failure is
// never cached; it propagates and the next call recomputes.
//
// An entry that fails to unmarshal is treated as a miss and overwritten.
func GetOrSet[T any](ctx context.Context, o *Orchestrator, key string, ttl time.Duration, supplier func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := o.store.Get(ctx, key)
	if err == nil {
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			cacheHits.WithLabelValues("service").Inc()
			return v, nil
		}
		// Corrupt entry: fall through and recompute.
	} else if err != ErrCacheMiss {
		return zero, err
	}
	cacheMisses.WithLabelValues("service").Inc()

	v, err := supplier(ctx)
	if err != nil {
		return zero, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("marshal cache value for %q: %w", key, err)
	}
	if err := o.store.Set(ctx, key, data, ttl); err != nil {
		return zero, err
	}
	return v, nil
}

// RememberList performs GetOrSet and, on hit and miss alike, registers key
// under tag. This is how an unbounded key space (arbitrary filter and
// pagination combinations of a listing endpoint) becomes invalidatable as a
// unit: the invalidator never needs to know which concrete keys exist, only
// the tag.
func RememberList[T any](ctx context.Context, o *Orchestrator, tag, key string, ttl time.Duration, supplier func(context.Context) (T, error)) (T, error) {
	v, err := GetOrSet(ctx, o, key, ttl, supplier)
	if err != nil {
		return v, err
	}
	if err := o.tags.Track(ctx, tag, key); err != nil {
		return v, err
	}
	return v, nil
}
