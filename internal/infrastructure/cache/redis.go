package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/events"
	"github.com/goto-masaaki-dm/praise-todo/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Custom error types
var (
	ErrCacheNotFound   = errors.New("cache: key not found")
	ErrCacheConnection = errors.New("cache: connection error")
	ErrInvalidConfig   = errors.New("cache: invalid configuration")
)

// Config holds the configuration for Redis client
type Config struct {
	Addr                string
	Password            string
	DB                  int
	PoolSize            int
	MinIdleConns        int
	MaxRetries          int
	ConnTimeout         time.Duration
	OperationTimeout    time.Duration
	MaxKeyLength        int
	KeyPrefix           string
	HealthCheckInterval time.Duration
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		PoolSize:            50,
		MinIdleConns:        5,
		MaxRetries:          3,
		ConnTimeout:         5 * time.Second,
		OperationTimeout:    2 * time.Second,
		MaxKeyLength:        256,
		KeyPrefix:           "praise:",
		HealthCheckInterval: 10 * time.Second,
	}
}

// NewConfigFromEnv creates a Redis config from project configuration
func NewConfigFromEnv(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Addr = fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	c.Password = cfg.Redis.Password
	c.DB = cfg.Redis.DB
	if cfg.Redis.KeyPrefix != "" {
		c.KeyPrefix = cfg.Redis.KeyPrefix
	}
	if cfg.Server.Timeout > 0 {
		c.OperationTimeout = cfg.Server.Timeout
	}
	return c
}

var lookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by cache type and result (hit or miss).",
	},
	[]string{"type", "result"},
)

// RedisClient wraps the Redis client with prefixing, health tracking and
// progress event fan-out.
type RedisClient struct {
	client    *redis.Client
	config    *Config
	logger    *zap.Logger
	closeOnce sync.Once
	done      chan struct{}
	unhealthy atomic.Bool
}

// ProgressChannelPrefix is prepended to the user id to form a per-user channel.
const ProgressChannelPrefix = "progress:events:"

// NewRedisClient creates a new Redis client with the provided configuration
func NewRedisClient(cfg *Config, logger *zap.Logger) (*RedisClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnTimeout)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r := &RedisClient{
		client: client,
		config: cfg,
		logger: logger,
		done:   make(chan struct{}),
	}

	if cfg.HealthCheckInterval > 0 {
		go r.healthCheckLoop()
	}
	return r, nil
}

// healthCheckLoop periodically checks Redis health until Close is called
func (r *RedisClient) healthCheckLoop() {
	ticker := time.NewTicker(r.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.config.OperationTimeout)
			err := r.HealthCheck(ctx)
			if err != nil {
				r.logger.Error("Redis health check failed", zap.Error(err))
			}
			r.unhealthy.Store(err != nil)
			cancel()
		}
	}
}

// IsHealthy reports the result of the last background ping.
func (r *RedisClient) IsHealthy() bool {
	return !r.unhealthy.Load()
}

// withContext wraps the context with a timeout if none is set
func (r *RedisClient) withContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, r.config.OperationTimeout)
	}
	return ctx, func() {}
}

func (r *RedisClient) validateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: empty key", ErrInvalidConfig)
	}
	if len(key) > r.config.MaxKeyLength {
		return fmt.Errorf("%w: key too long (max %d characters)", ErrInvalidConfig, r.config.MaxKeyLength)
	}
	return nil
}

func (r *RedisClient) prefixKey(key string) string {
	return r.config.KeyPrefix + key
}

// Get retrieves a value from the cache
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	if err := r.validateKey(key); err != nil {
		return "", err
	}
	if !r.IsHealthy() {
		return "", ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	val, err := r.client.Get(ctx, r.prefixKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("%w: %s", ErrCacheNotFound, key)
		}
		return "", fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return val, nil
}

// Set stores a value in the cache
func (r *RedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.validateKey(key); err != nil {
		return err
	}
	if !r.IsHealthy() {
		return ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	return r.client.Set(ctx, r.prefixKey(key), value, ttl).Err()
}

// Delete removes values from the cache
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if !r.IsHealthy() {
		return ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	prefixedKeys := make([]string, len(keys))
	for i, key := range keys {
		if err := r.validateKey(key); err != nil {
			return err
		}
		prefixedKeys[i] = r.prefixKey(key)
	}
	return r.client.Del(ctx, prefixedKeys...).Err()
}

// ClearByPattern removes all cache entries matching the given pattern
func (r *RedisClient) ClearByPattern(ctx context.Context, pattern string) error {
	if !r.IsHealthy() {
		return ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	iter := r.client.Scan(ctx, 0, r.prefixKey(pattern), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

// GetJSON loads key into dest. A miss returns (false, nil).
func (r *RedisClient) GetJSON(ctx context.Context, key, cacheType string, dest interface{}) (bool, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		r.trackCacheEvent(false, cacheType)
		if errors.Is(err, ErrCacheNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		r.trackCacheEvent(false, cacheType)
		return false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	r.trackCacheEvent(true, cacheType)
	return true, nil
}

// SetJSON stores value encoded as JSON.
func (r *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return r.Set(ctx, key, string(data), ttl)
}

// GenerateCacheKey joins an entity type, its id and an optional action.
func GenerateCacheKey(entityType string, entityID interface{}, action string) string {
	if action == "" {
		return fmt.Sprintf("%s:%v", entityType, entityID)
	}
	return fmt.Sprintf("%s:%v:%s", entityType, entityID, action)
}

func (r *RedisClient) trackCacheEvent(hit bool, cacheType string) {
	result := "miss"
	if hit {
		result = "hit"
	}
	lookups.WithLabelValues(cacheType, result).Inc()
}

// HealthCheck checks if Redis is responding
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// GetClient returns the underlying Redis client
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// Close stops the health loop and closes the connection pool
func (r *RedisClient) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.client.Close()
	})
	return err
}

func (r *RedisClient) progressChannel(userID uuid.UUID) string {
	return r.prefixKey(ProgressChannelPrefix + userID.String())
}

// PublishProgress publishes a progress event on the user's channel
func (r *RedisClient) PublishProgress(ctx context.Context, event *events.ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := r.withContext(ctx)
	defer cancel()
	return r.client.Publish(ctx, r.progressChannel(event.UserID), data).Err()
}

// ProgressSubscription is a confirmed subscription to one user's progress
// channel. Events published after SubscribeProgress returns are buffered
// until Listen consumes them.
type ProgressSubscription struct {
	pubsub *redis.PubSub
	logger *zap.Logger
}

// SubscribeProgress subscribes to the user's channel and returns once Redis
// has acknowledged the subscription.
func (r *RedisClient) SubscribeProgress(ctx context.Context, userID uuid.UUID) (*ProgressSubscription, error) {
	pubsub := r.client.Subscribe(ctx, r.progressChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to progress events: %w", err)
	}
	return &ProgressSubscription{pubsub: pubsub, logger: r.logger}, nil
}

// Listen delivers events to callback until ctx is cancelled, the
// subscription is closed or callback returns an error.
func (s *ProgressSubscription) Listen(ctx context.Context, callback func(*events.ProgressEvent) error) error {
	ch := s.pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event events.ProgressEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.logger.Warn("Dropping malformed progress event", zap.Error(err))
				continue
			}
			if err := callback(&event); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *ProgressSubscription) Close() error {
	return s.pubsub.Close()
}

var _ events.Publisher = (*RedisClient)(nil)
