package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"job-board-api/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// cachedResponse is the wire format of a cached HTTP response. Wrapping the
// body keeps a legitimately-empty payload distinguishable from a store miss.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// HTTPKeyOf computes the response-cache key for the current request. Call
// sites that register an HTTP mirror key under a tag must go through this
// helper so their key matches the middleware's byte for byte.
func HTTPKeyOf(c *gin.Context) string {
	return cache.BuildHTTPKey(c.GetString("user_id"), c.Request.URL.Path, c.Request.URL.Query())
}

// responseCapture tees the response body so it can be stored after the
// handler chain ran.
type responseCapture struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseCapture) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseCapture) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache caches whole GET responses in the shared store, keyed by
// HTTPKeyOf. Non-GET requests pass through untouched; only 200 responses are
// stored, with the given TTL (cache.TTLDefault defers to the store default).
//
// The middleware has no tag awareness: keeping it consistent with tag-based
// invalidation is the call site's job, by tracking HTTPKeyOf(c) under the
// right tag on the read path.
func ResponseCache(store cache.Store, ttl time.Duration) gin.HandlerFunc {
	logger := log.With().Str("component", "httpcache").Logger()

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := HTTPKeyOf(c)
		raw, err := store.Get(c.Request.Context(), key)
		if err == nil {
			var resp cachedResponse
			if json.Unmarshal(raw, &resp) == nil {
				cache.HitHTTP()
				c.Data(resp.Status, resp.ContentType, resp.Body)
				c.Abort()
				return
			}
			// corrupt entry: fall through and repopulate
		} else if err != cache.ErrCacheMiss {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cache store unavailable"})
			c.Abort()
			return
		}
		cache.MissHTTP()

		capture := &responseCapture{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = capture

		c.Next()

		if capture.Status() != http.StatusOK {
			return
		}
		entry := cachedResponse{
			Status:      capture.Status(),
			ContentType: capture.Header().Get("Content-Type"),
			Body:        capture.body.Bytes(),
		}
		data, err := json.Marshal(entry)
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("marshal cached response")
			return
		}
		// The response is already on the wire; a failed store only costs
		// the next request a recompute.
		if err := store.Set(c.Request.Context(), key, data, ttl); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("store cached response")
		}
	}
}
