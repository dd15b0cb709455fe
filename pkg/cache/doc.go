// Package cache provides response caching for upstream biomedical APIs with
// an in-memory LRU tier and an optional shared Redis tier.
//
// The cache manager implements TTL caching with the following features:
//
// - Per-entry TTLs chosen by the caller (the upstream APIs publish no cache headers)
// - In-memory LRU tier for hot entries, backfilled from Redis on read
// - Optional Redis tier for sharing entries across processes
// - Graceful degradation to memory-only operation on Redis failures
// - Prometheus metrics for observability
// - Deterministic cache key generation
//
// # Basic Usage
//
//	// Create cache manager (redis client may be nil for memory-only)
//	manager, err := cache.NewManager(redisClient, 1024)
//	if err != nil {
//		return err
//	}
//
//	// Create cache key
//	key := cache.Key{
//		Domain:   "myvariant",
//		Endpoint: "/v1/variant/rs113488022",
//		Params:   url.Values{"fields": []string{"all"}},
//	}
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from upstream
//	}
//
// # HTTP Response Caching
//
//	// Convert HTTP response to a cache entry valid for 15 minutes
//	entry, err := cache.ResponseToEntry(resp, 15*time.Minute)
//	if err != nil {
//		return err
//	}
//
//	// Store in cache
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - biomed_cache_hits_total{layer} - Cache hits by layer
//   - biomed_cache_misses_total - Cache misses
//   - biomed_cache_errors_total{operation} - Cache operation errors
//   - biomed_cache_stored_bytes - Size of entries written to Redis
package cache
