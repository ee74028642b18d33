package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/erp/ledger/internal/infrastructure/config"
)

// Cache stores the latest rate table per base currency.
// Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, base string) (*RateTable, error)
	Set(ctx context.Context, table *RateTable, ttl time.Duration) error
}

type memoryEntry struct {
	table     *RateTable
	expiresAt time.Time
}

// MemoryCache keeps rate tables in process. Suitable for single-instance
// deployments and tests.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, base string) (*RateTable, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[strings.ToUpper(base)]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, nil
	}
	return e.table, nil
}

func (c *MemoryCache) Set(_ context.Context, table *RateTable, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[table.Base] = memoryEntry{table: table, expiresAt: c.now().Add(ttl)}
	return nil
}

// RedisCache shares rate tables across instances
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisCacheWithClient(client, ""), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "ledger:fx:"
	}
	return &RedisCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisCache) key(base string) string {
	return c.keyPrefix + strings.ToUpper(base)
}

func (c *RedisCache) Get(ctx context.Context, base string) (*RateTable, error) {
	raw, err := c.client.Get(ctx, c.key(base)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fx rates: %w", err)
	}
	var table RateTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("failed to decode fx rates: %w", err)
	}
	return &table, nil
}

func (c *RedisCache) Set(ctx context.Context, table *RateTable, ttl time.Duration) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to encode fx rates: %w", err)
	}
	if err := c.client.Set(ctx, c.key(table.Base), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write fx rates: %w", err)
	}
	return nil
}

// Close releases the Redis client
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NewCache returns a Redis cache when Redis is enabled and reachable, and
// falls back to an in-memory cache otherwise.
func NewCache(cfg config.RedisConfig, logger *zap.Logger) Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return NewMemoryCache()
	}
	c, err := NewRedisCache(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory fx cache", zap.Error(err))
		return NewMemoryCache()
	}
	logger.Info("using Redis fx cache", zap.String("addr", cfg.Addr()))
	return c
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
)
