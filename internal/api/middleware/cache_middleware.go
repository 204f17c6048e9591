package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ResponseStore is the slice of the Redis client the response cache needs.
type ResponseStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	ClearByPattern(ctx context.Context, pattern string) error
}

// CacheMiddleware caches successful GET responses per user and resource.
// A nil store turns every handler into a pass-through.
type CacheMiddleware struct {
	store  ResponseStore
	ttl    time.Duration
	logger *zap.Logger
}

func NewCacheMiddleware(store ResponseStore, ttl time.Duration, logger *zap.Logger) *CacheMiddleware {
	return &CacheMiddleware{store: store, ttl: ttl, logger: logger}
}

// responseBuffer is a custom ResponseWriter that stores the response
type responseBuffer struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func newResponseBuffer(original gin.ResponseWriter) *responseBuffer {
	return &responseBuffer{ResponseWriter: original, body: &bytes.Buffer{}}
}

func (r *responseBuffer) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseBuffer) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// CacheResponse serves GET requests on resource from the cache and stores
// fresh 200 responses.
func (m *CacheMiddleware) CacheResponse(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.store == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := m.cacheKey(c, resource)
		if cached, err := m.store.Get(c.Request.Context(), key); err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			c.Abort()
			return
		}

		writer := c.Writer
		buff := newResponseBuffer(writer)
		c.Writer = buff
		c.Header("X-Cache", "MISS")

		c.Next()

		if buff.Status() == http.StatusOK {
			if err := m.store.Set(c.Request.Context(), key, buff.body.String(), m.ttl); err != nil {
				m.logger.Warn("Failed to cache response", zap.Error(err), zap.String("key", key))
			}
		}
		c.Writer = writer
	}
}

// CacheInvalidate drops the caller's cached responses for resources after a
// successful write.
func (m *CacheMiddleware) CacheInvalidate(resources ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if m.store == nil {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		userID, _ := GetUserID(c)
		for _, resource := range resources {
			pattern := "http:" + resource + ":" + userID.String() + ":*"
			if err := m.store.ClearByPattern(c.Request.Context(), pattern); err != nil {
				m.logger.Warn("Failed to invalidate cache", zap.Error(err), zap.String("resource", resource))
			}
		}
	}
}

func (m *CacheMiddleware) cacheKey(c *gin.Context, resource string) string {
	userID, _ := GetUserID(c)
	parts := []string{"http", resource, userID.String(), c.Request.URL.Path}
	if c.Request.URL.RawQuery != "" {
		parts = append(parts, c.Request.URL.RawQuery)
	}
	return strings.Join(parts, ":")
}
