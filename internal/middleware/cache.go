package middleware

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/cache"
	"github.com/Tuhin-ninja/the-freelancer-frontend-sub001/pkg/logger"
)

// CacheConfig configures the cache middleware
type CacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
	// Public marks responses that do not depend on the caller, so requests
	// with credentials may be cached too
	Public bool
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:       cache.TTLDefault,
		KeyPrefix: cache.PrefixResponse,
	}
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Cache returns a gin middleware that caches successful GET responses.
// Unless cfg.Public is set, requests carrying credentials bypass the cache.
func Cache(store cache.Service, cfg CacheConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || store == nil || !store.IsAvailable() {
			c.Next()
			return
		}
		if !cfg.Public && c.GetHeader("Authorization") != "" {
			c.Next()
			return
		}

		key := cfg.KeyPrefix + cacheKey(c.Request.URL.Path, c.Request.URL.RawQuery)
		ctx := c.Request.Context()

		var cached cachedResponse
		if err := store.Get(ctx, key, &cached); err == nil {
			recordCache("hit")
			c.Header("X-Cache", "HIT")
			c.Data(cached.Status, cached.ContentType, cached.Body)
			c.Abort()
			return
		}
		recordCache("miss")

		w := &responseWriter{ResponseWriter: c.Writer, body: make([]byte, 0, 1024)}
		c.Writer = w
		c.Header("X-Cache", "MISS")

		c.Next()

		if w.Status() < 200 || w.Status() >= 300 {
			return
		}
		entry := cachedResponse{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body,
		}
		if err := store.Set(ctx, key, entry, cfg.TTL); err != nil {
			logger.GetLogger().Warn().Err(err).Str("path", c.Request.URL.Path).Msg("response cache write failed")
		}
	}
}

func cacheKey(path, query string) string {
	raw := path
	if query != "" {
		raw += "?" + query
	}
	return fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))
}

// responseWriter captures the response body
type responseWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body = append(w.body, s...)
	return w.ResponseWriter.WriteString(s)
}
