package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client, skipping the test when no local
// Redis is available. Integration tests use testcontainers-go instead.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewManager(t *testing.T) {
	manager, err := NewManager(nil, 16)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if manager == nil {
		t.Fatal("NewManager returned nil")
	}
	if manager.redis != nil {
		t.Error("Expected memory-only manager to have no redis client")
	}
}

func TestNewManager_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := NewManager(nil, size); err == nil {
			t.Errorf("NewManager(nil, %d) should return error", size)
		}
	}
}

func TestManager_SetAndGet_MemoryOnly(t *testing.T) {
	manager, err := NewManager(nil, 16)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	ctx := context.Background()

	key := Key{
		Domain:   "myvariant",
		Endpoint: "/v1/variant/rs113488022",
	}
	entry := NewEntry([]byte(`{"_id": "chr7:g.140453136A>T"}`), 200, 5*time.Minute)

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	retrieved, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if string(retrieved.Data) != string(entry.Data) {
		t.Errorf("Data mismatch: got %s, want %s", retrieved.Data, entry.Data)
	}
	if retrieved.StatusCode != entry.StatusCode {
		t.Errorf("StatusCode mismatch: got %d, want %d", retrieved.StatusCode, entry.StatusCode)
	}
}

func TestManager_Get_CacheMiss(t *testing.T) {
	manager, err := NewManager(nil, 16)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	key := Key{Domain: "myvariant", Endpoint: "/v1/nonexistent"}

	if _, err := manager.Get(context.Background(), key); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_Get_ExpiredEntry(t *testing.T) {
	manager, err := NewManager(nil, 16)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	ctx := context.Background()

	key := Key{Domain: "myvariant", Endpoint: "/v1/variant/rs123"}

	// Already-expired entries are not stored.
	expired := NewEntry([]byte(`{}`), 200, -1*time.Hour)
	if err := manager.Set(ctx, key, expired); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}

	// A stored entry that expires later is reported as a miss once stale.
	shortLived := NewEntry([]byte(`{}`), 200, 30*time.Millisecond)
	if err := manager.Set(ctx, key, shortLived); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := manager.Get(ctx, key); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after expiry, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	manager, err := NewManager(nil, 16)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	ctx := context.Background()

	key := Key{Domain: "cbioportal", Endpoint: "/genes/BRAF"}
	entry := NewEntry([]byte(`{"hugoGeneSymbol": "BRAF"}`), 200, 5*time.Minute)

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := manager.Get(ctx, key); err != nil {
		t.Fatalf("Get after Set failed: %v", err)
	}

	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestManager_Set_NilEntry(t *testing.T) {
	manager, err := NewManager(nil, 16)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	key := Key{Domain: "myvariant", Endpoint: "/v1/variant/rs123"}

	if err := manager.Set(context.Background(), key, nil); err == nil {
		t.Error("Set with nil entry should return error")
	}
}

func TestManager_RedisTier(t *testing.T) {
	client := setupTestRedis(t)
	manager, err := NewManager(client, 16)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	ctx := context.Background()

	key := Key{Domain: "oncokb", Endpoint: "/utils/allCuratedGenes"}
	entry := NewEntry([]byte(`[{"hugoSymbol": "BRAF"}]`), 200, 5*time.Minute)

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Drop the memory tier so the read must come from Redis.
	manager.memory.Purge()

	retrieved, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get from Redis tier failed: %v", err)
	}
	if string(retrieved.Data) != string(entry.Data) {
		t.Errorf("Data mismatch: got %s, want %s", retrieved.Data, entry.Data)
	}

	// The read must have backfilled the memory tier.
	if !manager.memory.Contains(key.String()) {
		t.Error("Expected Redis read to backfill the memory tier")
	}
}

func TestManager_RedisTier_Delete(t *testing.T) {
	client := setupTestRedis(t)
	manager, err := NewManager(client, 16)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	ctx := context.Background()

	key := Key{Domain: "oncokb", Endpoint: "/utils/allCuratedGenes"}
	entry := NewEntry([]byte(`[]`), 200, 5*time.Minute)

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	manager.memory.Purge()
	if _, err := manager.Get(ctx, key); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}
