package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"job-board-api/internal/cache"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newCachedRouter(store cache.Store) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	hits := 0
	r := gin.New()
	r.GET("/job-postings/public", ResponseCache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{
			"location": c.Query("location"),
			"page":     c.Query("page"),
			"hits":     hits,
		})
	})
	return r, &hits
}

func TestResponseCache_SecondCallServedFromCache(t *testing.T) {
	r, handlerHits := newCachedRouter(cache.NewMemoryStore(0))

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/job-postings/public?page=1", nil))
	require.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/job-postings/public?page=1", nil))
	require.Equal(t, http.StatusOK, w2.Code)

	require.Equal(t, 1, *handlerHits, "second call must not re-enter the handler")
	require.Equal(t, w1.Body.String(), w2.Body.String())
	require.Equal(t, "application/json; charset=utf-8", w2.Header().Get("Content-Type"))
}

func TestResponseCache_QueryOrderInvariance(t *testing.T) {
	r, handlerHits := newCachedRouter(cache.NewMemoryStore(0))

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/job-postings/public?location=Jakarta&page=1", nil))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/job-postings/public?page=1&location=Jakarta", nil))

	require.Equal(t, 1, *handlerHits, "reordered query must hit the same cache key")
	require.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestResponseCache_DifferentQueriesAreDistinct(t *testing.T) {
	r, handlerHits := newCachedRouter(cache.NewMemoryStore(0))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/job-postings/public?page=1", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/job-postings/public?page=2", nil))

	require.Equal(t, 2, *handlerHits)
}

func TestResponseCache_UserScopedKeys(t *testing.T) {
	store := cache.NewMemoryStore(0)
	gin.SetMode(gin.TestMode)
	hits := 0
	r := gin.New()
	// stand-in for the JWT middleware populating the identity
	r.GET("/mine", func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-Test-User"))
	}, ResponseCache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"user": c.GetString("user_id")})
	})

	for _, user := range []string{"u-1", "u-2"} {
		req := httptest.NewRequest(http.MethodGet, "/mine", nil)
		req.Header.Set("X-Test-User", user)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	require.Equal(t, 2, hits, "different users must not share a key")

	req := httptest.NewRequest(http.MethodGet, "/mine", nil)
	req.Header.Set("X-Test-User", "u-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, 2, hits, "repeat request for the same user must be a cache hit")
	require.Contains(t, w.Body.String(), "u-1")
}

func TestResponseCache_NonGETPassesThrough(t *testing.T) {
	store := cache.NewMemoryStore(0)
	gin.SetMode(gin.TestMode)
	hits := 0
	r := gin.New()
	r.POST("/job-postings", ResponseCache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/job-postings", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/job-postings", nil))
	require.Equal(t, 2, hits, "POST must never be cached")
	require.Equal(t, 0, store.Len())
}

func TestResponseCache_ErrorResponsesNotCached(t *testing.T) {
	store := cache.NewMemoryStore(0)
	gin.SetMode(gin.TestMode)
	hits := 0
	r := gin.New()
	r.GET("/flaky", ResponseCache(store, time.Minute), func(c *gin.Context) {
		hits++
		if hits == 1 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flaky", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/flaky", nil))
	require.Equal(t, http.StatusOK, w.Code, "failure must not have been cached")
	require.Equal(t, 2, hits)
}

func TestResponseCache_ManualDeleteEvictsMirror(t *testing.T) {
	store := cache.NewMemoryStore(0)
	r, handlerHits := newCachedRouter(store)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/job-postings/public?page=1", nil))
	require.Equal(t, 1, *handlerHits)

	// simulate a call site deleting the HTTP mirror key after a write
	key := cache.BuildHTTPKey("", "/job-postings/public", map[string][]string{"page": {"1"}})
	require.NoError(t, store.Delete(context.Background(), key))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/job-postings/public?page=1", nil))
	require.Equal(t, 2, *handlerHits, "read after mirror eviction must recompute")
}
