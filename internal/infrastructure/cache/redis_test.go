package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/events"
	"github.com/goto-masaaki-dm/praise-todo/pkg/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()
	cfg.KeyPrefix = "test:"
	cfg.HealthCheckInterval = 0

	client, err := NewRedisClient(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestNewRedisClientRequiresAddress(t *testing.T) {
	_, err := NewRedisClient(&Config{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewConfigFromEnv(t *testing.T) {
	cfg := &config.Config{}
	cfg.Redis.Host = "redis"
	cfg.Redis.Port = 6380
	cfg.Redis.DB = 2
	cfg.Redis.KeyPrefix = "todo:"

	c := NewConfigFromEnv(cfg)
	assert.Equal(t, "redis:6380", c.Addr)
	assert.Equal(t, 2, c.DB)
	assert.Equal(t, "todo:", c.KeyPrefix)
}

func TestGetSetDelete(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "greeting", "hello", time.Minute))
	assert.True(t, mr.Exists("test:greeting"))

	val, err := client.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", val)

	require.NoError(t, client.Delete(ctx, "greeting"))
	_, err = client.Get(ctx, "greeting")
	assert.ErrorIs(t, err, ErrCacheNotFound)

	_, err = client.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestJSONRoundTripTracksHits(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	type payload struct {
		Total int `json:"total"`
	}

	var out payload
	hit, err := client.GetJSON(ctx, "progress:1", "roundtrip", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, client.SetJSON(ctx, "progress:1", payload{Total: 42}, time.Minute))
	hit, err = client.GetJSON(ctx, "progress:1", "roundtrip", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, out.Total)

	assert.Equal(t, 1.0, testutil.ToFloat64(lookups.WithLabelValues("roundtrip", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(lookups.WithLabelValues("roundtrip", "miss")))
}

func TestClearByPattern(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "progress:a", "1", 0))
	require.NoError(t, client.Set(ctx, "progress:b", "2", 0))
	require.NoError(t, client.Set(ctx, "other", "3", 0))

	require.NoError(t, client.ClearByPattern(ctx, "progress:*"))
	assert.False(t, mr.Exists("test:progress:a"))
	assert.False(t, mr.Exists("test:progress:b"))
	assert.True(t, mr.Exists("test:other"))
}

func TestGenerateCacheKey(t *testing.T) {
	assert.Equal(t, "progress:42", GenerateCacheKey("progress", 42, ""))
	assert.Equal(t, "task:7:list", GenerateCacheKey("task", 7, "list"))
}

func TestPublishSubscribeProgress(t *testing.T) {
	client, mr := newTestClient(t)
	userID := uuid.New()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := client.SubscribeProgress(ctx, userID)
	require.NoError(t, err)
	defer sub.Close()
	channel := client.progressChannel(userID)
	assert.Equal(t, 1, mr.PubSubNumSub(channel)[channel])

	// Published before anyone listens: the confirmed subscription buffers it.
	event := &events.ProgressEvent{EventType: events.EventTypeTaskCompleted, UserID: userID, Points: 20, TotalPoints: 20}
	require.NoError(t, client.PublishProgress(context.Background(), event))

	var got *events.ProgressEvent
	err = sub.Listen(ctx, func(e *events.ProgressEvent) error {
		got = e
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, 20, got.Points)
}
