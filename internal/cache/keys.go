package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// keySep joins key segments. Domain values (IDs, filters, page numbers)
// never contain it.
const keySep = ":"

// BuildKey builds a deterministic cache key from heterogeneous segments.
// Nil and empty-string segments are dropped, everything else is stringified
// and trimmed. Order-sensitive by contract: callers pass segments in a fixed
// canonical order (namespace, entity, operation, scope, variable filters);
// the builder never sorts them.
func BuildKey(segments ...any) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(seg))
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, keySep)
}

// BuildHTTPKey builds the cache key for a whole HTTP GET response.
// Any query string embedded in path is discarded; the explicit query map is
// re-serialized deterministically (names sorted alphabetically, repeated
// values expanded and sorted within a name). The key is prefixed with
// "u:{userID}|" only when userID is non-empty, so anonymous requests share
// one unscoped key space per path+query.
//
// Call sites that manually invalidate the HTTP-level mirror of a cached
// response must compute the key through this exact function, or the two
// cache layers silently diverge.
func BuildHTTPKey(userID, path string, query url.Values) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	key := path
	if len(query) > 0 {
		normalized := make(url.Values, len(query))
		for name, vals := range query {
			sorted := append([]string(nil), vals...)
			sort.Strings(sorted)
			normalized[name] = sorted
		}
		// url.Values.Encode sorts by name.
		key += "?" + normalized.Encode()
	}

	if userID != "" {
		key = "u:" + userID + "|" + key
	}
	return key
}
