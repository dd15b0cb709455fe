package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/variantlab/biomed-client/pkg/logging"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Cache layers, used as metric labels.
const (
	layerMemory = "memory"
	layerRedis  = "redis"
)

// Manager handles caching with an in-memory LRU tier and an optional shared
// Redis tier. Reads check memory first and backfill it from Redis; writes go
// to both. Redis failures degrade to memory-only operation and never fail the
// request path.
type Manager struct {
	memory *lru.Cache[string, *Entry]
	redis  *redis.Client
	logger zerolog.Logger
}

// NewManager creates a cache manager. redisClient may be nil for memory-only
// operation.
func NewManager(redisClient *redis.Client, memorySize int) (*Manager, error) {
	if memorySize <= 0 {
		return nil, fmt.Errorf("memory size must be positive, got %d", memorySize)
	}

	memory, err := lru.New[string, *Entry](memorySize)
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}

	return &Manager{
		memory: memory,
		redis:  redisClient,
		logger: logging.NewLogger("cache"),
	}, nil
}

// Get retrieves a cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist in any tier or is expired.
func (m *Manager) Get(ctx context.Context, key Key) (*Entry, error) {
	cacheKey := key.String()

	// Memory tier
	if entry, ok := m.memory.Get(cacheKey); ok {
		if entry.IsExpired() {
			m.memory.Remove(cacheKey)
		} else {
			CacheHits.WithLabelValues(layerMemory).Inc()
			return entry, nil
		}
	}

	if m.redis == nil {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	// Redis tier
	data, err := m.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		m.logger.Warn().
			Err(err).
			Str("key", cacheKey).
			Msg("Redis get failed, treating as cache miss")
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() {
		_ = m.Delete(ctx, key)
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	// Backfill memory so repeat reads stay local
	m.memory.Add(cacheKey, &entry)

	CacheHits.WithLabelValues(layerRedis).Inc()
	return &entry, nil
}

// Set stores a cache entry in both tiers for the entry's remaining TTL.
// Already-expired entries are not stored. A Redis write failure leaves the
// entry in the memory tier and is not reported as an error.
func (m *Manager) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ttl <= 0 {
		return nil
	}

	cacheKey := key.String()
	m.memory.Add(cacheKey, entry)

	if m.redis == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, cacheKey, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		m.logger.Warn().
			Err(err).
			Str("key", cacheKey).
			Msg("Redis set failed, entry kept in memory only")
		return nil
	}

	StoredBytes.Observe(float64(len(data)))
	return nil
}

// Delete removes a cache entry from both tiers.
func (m *Manager) Delete(ctx context.Context, key Key) error {
	cacheKey := key.String()

	m.memory.Remove(cacheKey)

	if m.redis == nil {
		return nil
	}

	if err := m.redis.Del(ctx, cacheKey).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
