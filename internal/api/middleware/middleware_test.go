package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/pkg/config"
	"github.com/goto-masaaki-dm/praise-todo/pkg/security/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var authCfg = config.AuthConfig{JWTSecret: "middleware-secret"}

func serve(r *gin.Engine, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(NewAuthMiddleware(auth.NewVerifier(authCfg), zap.NewNop()))
	r.GET("/whoami", func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id.String()+" "+GetEmail(c))
	})

	userID := uuid.New()
	token, err := auth.GenerateToken(userID, "me@example.com", authCfg, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			w := serve(r, http.MethodGet, "/whoami", "", h)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, userID.String()+" me@example.com", w.Body.String())
			}
		})
	}
}

type stubLimiter struct {
	decision auth.Decision
	err      error
	keys     []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (auth.Decision, error) {
	s.keys = append(s.keys, key)
	return s.decision, s.err
}

func (s *stubLimiter) Reset(context.Context, string) error { return nil }

func TestRateLimitMiddleware(t *testing.T) {
	userID := uuid.New()
	limiter := &stubLimiter{decision: auth.Decision{Allowed: false, Remaining: 0, ResetAt: time.Now().Add(time.Minute)}}

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(userIDKey, userID); c.Next() })
	r.Use(RateLimitMiddleware(limiter, zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, []string{"user:" + userID.String()}, limiter.keys)

	limiter.err = errors.New("redis down")
	w = serve(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "limiter errors fail open")
}

type createThing struct {
	Name     string  `json:"name" validate:"not_empty,max=5"`
	Priority *string `json:"priority,omitempty" validate:"omitempty,priority"`
}

func TestValidateRequest(t *testing.T) {
	v := NewValidationMiddleware(zap.NewNop())
	r := gin.New()
	r.POST("/things", v.ValidateRequest(&createThing{}), func(c *gin.Context) {
		thing, ok := GetValidatedModel[createThing](c)
		require.True(t, ok)
		c.String(http.StatusOK, thing.Name)
	})

	w := serve(r, http.MethodPost, "/things", `{"name":"ok"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = serve(r, http.MethodPost, "/things", `{"name":"  "}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"this field cannot be empty"`)

	w = serve(r, http.MethodPost, "/things", `{"name":"ok","priority":"someday"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "priority")

	w = serve(r, http.MethodPost, "/things", `{"name":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid JSON format")
}

type memoryStore struct {
	data map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memoryStore) ClearByPattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

func TestCacheMiddleware(t *testing.T) {
	store := &memoryStore{data: map[string]string{}}
	cache := NewCacheMiddleware(store, time.Minute, zap.NewNop())
	userID := uuid.New()
	calls := 0

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(userIDKey, userID); c.Next() })
	r.GET("/items", cache.CacheResponse("items"), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.POST("/items", cache.CacheInvalidate("items"), func(c *gin.Context) { c.Status(http.StatusCreated) })

	first := serve(r, http.MethodGet, "/items", "", nil)
	second := serve(r, http.MethodGet, "/items", "", nil)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	serve(r, http.MethodPost, "/items", "", nil)
	assert.Empty(t, store.data)
	serve(r, http.MethodGet, "/items", "", nil)
	assert.Equal(t, 2, calls)
}

func TestCacheMiddlewareWithoutStore(t *testing.T) {
	cache := NewCacheMiddleware(nil, time.Minute, zap.NewNop())
	r := gin.New()
	r.GET("/items", cache.CacheResponse("items"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/items", cache.CacheInvalidate("items"), func(c *gin.Context) { c.Status(http.StatusCreated) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/items", "", nil).Code)
	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/items", "", nil).Code)
}
