package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/variantlab/biomed-client/internal/testutil"
	"github.com/variantlab/biomed-client/pkg/batcher"
	"github.com/variantlab/biomed-client/pkg/client"
	"github.com/variantlab/biomed-client/pkg/ratelimit"
	"github.com/variantlab/biomed-client/pkg/variants"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// newClient builds an API client pointed at the mock upstream.
func newClient(t *testing.T, mock *testutil.MockAPI, redisClient *redis.Client, limits map[string]ratelimit.Limit) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig("biomed-integration-test/1.0 (test@example.com)")
	cfg.Redis = redisClient
	cfg.BaseURLs = map[string]string{
		client.DomainMyVariant:  mock.URL(),
		client.DomainCBioPortal: mock.URL(),
		client.DomainOncoKB:     mock.URL(),
	}
	cfg.RateLimits = limits

	apiClient, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create API client: %v", err)
	}
	t.Cleanup(func() { apiClient.Close() })

	return apiClient
}

// TestFullRequestFlow exercises the complete path: rate limit gate, upstream
// request, Redis-backed cache store, and cache-served repeat.
func TestFullRequestFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/variant/rs113488022", testutil.NewJSONResponse(
		testutil.VariantDocument("chr7:g.140453136A>T", "rs113488022", "BRAF")))

	apiClient := newClient(t, mock, redisClient, nil)

	ctx := context.Background()

	var doc map[string]any
	err := apiClient.GetJSON(ctx, client.DomainMyVariant, "/variant/rs113488022", nil, &doc,
		client.WithCacheTTL(5*time.Minute))
	if err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}
	if doc["_id"] != "chr7:g.140453136A>T" {
		t.Errorf("_id = %v", doc["_id"])
	}

	// Second request is served from the cache
	var doc2 map[string]any
	err = apiClient.GetJSON(ctx, client.DomainMyVariant, "/variant/rs113488022", nil, &doc2,
		client.WithCacheTTL(5*time.Minute))
	if err != nil {
		t.Fatalf("Second GetJSON() error: %v", err)
	}

	if got := mock.RequestCount(); got != 1 {
		t.Errorf("Upstream requests = %d, want 1 (second served from cache)", got)
	}
}

// TestRedisCacheSharedAcrossClients verifies the Redis tier: a fresh client
// with a cold memory cache reads entries written by another.
func TestRedisCacheSharedAcrossClients(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/genes/BRAF", testutil.NewJSONResponse(`{"entrezGeneId": 673, "hugoSymbol": "BRAF"}`))

	ctx := context.Background()

	first := newClient(t, mock, redisClient, nil)
	var out map[string]any
	if err := first.GetJSON(ctx, client.DomainCBioPortal, "/genes/BRAF", nil, &out,
		client.WithCacheTTL(time.Minute)); err != nil {
		t.Fatalf("GetJSON() error: %v", err)
	}

	second := newClient(t, mock, redisClient, nil)
	var out2 map[string]any
	if err := second.GetJSON(ctx, client.DomainCBioPortal, "/genes/BRAF", nil, &out2,
		client.WithCacheTTL(time.Minute)); err != nil {
		t.Fatalf("GetJSON() on second client error: %v", err)
	}

	if got := mock.RequestCount(); got != 1 {
		t.Errorf("Upstream requests = %d, want 1 (second client reads Redis tier)", got)
	}
	if out2["hugoSymbol"] != "BRAF" {
		t.Errorf("hugoSymbol = %v", out2["hugoSymbol"])
	}
}

// TestRetryOnServerError verifies transient 5xx responses are retried with
// backoff until the upstream recovers.
func TestRetryOnServerError(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping retry backoff test in short mode")
	}

	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()

	var calls atomic.Int32
	mock.SetHandler("/variant/rs42", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"_id": "rs42"}`))
	})

	apiClient := newClient(t, mock, redisClient, nil)

	var doc map[string]any
	err := apiClient.GetJSON(context.Background(), client.DomainMyVariant, "/variant/rs42", nil, &doc)
	if err != nil {
		t.Fatalf("GetJSON() error after retries: %v", err)
	}

	if got := calls.Load(); got != 3 {
		t.Errorf("Upstream attempts = %d, want 3", got)
	}
}

// TestNoRetryOnClientError verifies 4xx responses fail immediately.
func TestNoRetryOnClientError(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/variant/rs0", testutil.NewNotFoundResponse())

	apiClient := newClient(t, mock, redisClient, nil)

	var doc map[string]any
	err := apiClient.GetJSON(context.Background(), client.DomainMyVariant, "/variant/rs0", nil, &doc)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if !client.IsNotFound(err) {
		t.Errorf("IsNotFound() = false for %v", err)
	}
	if got := mock.RequestCount(); got != 1 {
		t.Errorf("Upstream requests = %d, want 1 (no retry on 4xx)", got)
	}
}

// TestRateLimitSharedWindow verifies the Redis-backed fixed window delays
// requests beyond the budget.
func TestRateLimitSharedWindow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/variant/rs1", testutil.NewJSONResponse(`{"_id": "rs1"}`))

	window := 400 * time.Millisecond
	limits := map[string]ratelimit.Limit{
		client.DomainMyVariant: {Requests: 2, Window: window},
	}
	apiClient := newClient(t, mock, redisClient, limits)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		var doc map[string]any
		if err := apiClient.GetJSON(ctx, client.DomainMyVariant, "/variant/rs1", nil, &doc); err != nil {
			t.Fatalf("GetJSON() #%d error: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// The third request must wait for the next window
	if elapsed < window/2 {
		t.Errorf("3 requests with budget 2/%v completed in %v, expected a window wait", window, elapsed)
	}
	if got := mock.RequestCount(); got != 3 {
		t.Errorf("Upstream requests = %d, want 3", got)
	}
}

// TestBatchedAnnotationFanIn verifies concurrent Annotate callers coalesce
// into a single POST and each receives its own document.
func TestBatchedAnnotationFanIn(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetHandler("/variant", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		docs := make([]map[string]any, 0, len(req.IDs))
		for _, id := range req.IDs {
			docs = append(docs, map[string]any{
				"_id":   id,
				"query": id,
				"dbsnp": map[string]any{"rsid": id},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(docs)
	})

	apiClient := newClient(t, mock, redisClient, nil)

	cfg := variants.DefaultConfig()
	cfg.Batch = batcher.Config{BatchSize: 3, BatchTimeout: 200 * time.Millisecond}
	getter, err := variants.NewGetter(apiClient, cfg)
	if err != nil {
		t.Fatalf("Failed to create getter: %v", err)
	}

	ids := []string{"rs1", "rs2", "rs3"}
	results := make([]*variants.Variant, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i], errs[i] = getter.Annotate(context.Background(), id)
		}(i, id)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Annotate(%s) error: %v", ids[i], err)
		}
	}
	for i, v := range results {
		if v.RSID() != ids[i] {
			t.Errorf("results[%d].RSID() = %q, want %q", i, v.RSID(), ids[i])
		}
	}

	if got := len(mock.RequestsFor("/variant")); got != 1 {
		t.Errorf("POST /variant count = %d, want 1 coalesced batch", got)
	}
}
