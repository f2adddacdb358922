package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// tagKeyPrefix namespaces the membership sets inside the shared store.
const tagKeyPrefix = "tag"

// TagIndex maps a coarse invalidation scope ("tag") to the concrete keys
// cached under it. The membership set is itself a value in the same store
// (a JSON array under "tag:{name}"), so the index needs no storage of its
// own and survives process restarts.
//
// A member key may or may not correspond to a live entry: entries expire
// naturally while their membership lingers until the next Invalidate clears
// the set. That is harmless but means a rarely-invalidated tag accumulates
// members across TTL cycles; there is currently no size cap on the set.
type TagIndex struct {
	store Store
}

// NewTagIndex builds a TagIndex on top of the given store.
func NewTagIndex(store Store) *TagIndex {
	return &TagIndex{store: store}
}

func tagKey(tag string) string {
	return BuildKey(tagKeyPrefix, tag)
}

// members loads the current membership set for tag. An absent or unreadable
// set is treated as empty so tracking rebuilds it fresh.
func (t *TagIndex) members(ctx context.Context, tag string) ([]string, error) {
	raw, err := t.store.Get(ctx, tagKey(tag))
	if err == ErrCacheMiss {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, nil
	}
	return keys, nil
}

// Track idempotently registers memberKey under tag. Safe to call whether or
// not memberKey currently has a live entry (it may be an HTTP-level mirror
// of a service-level key managed elsewhere).
func (t *TagIndex) Track(ctx context.Context, tag, memberKey string) error {
	keys, err := t.members(ctx, tag)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if k == memberKey {
			return nil
		}
	}
	keys = append(keys, memberKey)

	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("marshal tag members: %w", err)
	}
	// The set must outlive the entries it indexes, so it never expires;
	// Invalidate clearing it is what bounds growth.
	return t.store.Set(ctx, tagKey(tag), data, NoExpiry)
}

// Invalidate deletes every tracked member key from the store, then clears
// the tag's membership set so future reads rebuild it fresh. Member deletes
// are best-effort: Store.Delete is idempotent, so an already-expired member
// is not an error, and a failing delete does not abort the remaining ones.
// The first real failure is reported after all members were attempted, and
// the membership set is kept so a retry covers the survivors. Invalidating
// an unknown tag is a no-op.
func (t *TagIndex) Invalidate(ctx context.Context, tag string) error {
	keys, err := t.members(ctx, tag)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	var firstErr error
	for _, k := range keys {
		if err := t.store.Delete(ctx, k); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		invalidatedKeys.Inc()
	}
	if firstErr != nil {
		return fmt.Errorf("invalidate tag %q: %w", tag, firstErr)
	}

	return t.store.Delete(ctx, tagKey(tag))
}
