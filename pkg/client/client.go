// Package client provides the core HTTP client for upstream biomedical APIs
// with rate limiting, caching, retries, and error classification.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/variantlab/biomed-client/pkg/cache"
	"github.com/variantlab/biomed-client/pkg/logging"
	"github.com/variantlab/biomed-client/pkg/ratelimit"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biomed_requests_total",
		Help: "Total upstream requests by domain and status",
	}, []string{"domain", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "biomed_request_duration_seconds",
		Help:    "Upstream request duration in seconds by domain",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"domain"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "biomed_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit errors.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Supported upstream API domains.
const (
	DomainMyVariant  = "myvariant"
	DomainCBioPortal = "cbioportal"
	DomainOncoKB     = "oncokb"
)

// DefaultBaseURLs returns the public endpoints of the supported APIs.
// The OncoKB entry points at the demo tier; callers with an API token
// switch it to the production endpoint.
func DefaultBaseURLs() map[string]string {
	return map[string]string{
		DomainMyVariant:  "https://myvariant.info/v1",
		DomainCBioPortal: "https://www.cbioportal.org/api",
		DomainOncoKB:     "https://demo.oncokb.org/api/v1",
	}
}

// Client is the shared HTTP front door for the upstream biomedical APIs.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Redis client for the shared cache tier and rate limit windows.
	// Optional; without it both stay process-local.
	Redis *redis.Client

	// UserAgent identifies this client to the upstream APIs.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// BaseURLs maps API domains to their base URLs.
	BaseURLs map[string]string

	// RateLimits holds the per-domain request budgets.
	RateLimits map[string]ratelimit.Limit

	// CacheSize is the number of entries the in-memory cache tier holds.
	CacheSize int

	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration

	// MaxRetries overrides the per-class retry attempt counts when positive.
	MaxRetries int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:      userAgent,
		BaseURLs:       DefaultBaseURLs(),
		RateLimits:     ratelimit.DefaultLimits(),
		CacheSize:      2048,
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if len(cfg.BaseURLs) == 0 {
		return nil, fmt.Errorf("base URLs are required")
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", cfg.CacheSize)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive, got %v", cfg.RequestTimeout)
	}

	logger := logging.NewLogger("biomed-client")

	cacheManager, err := cache.NewManager(cfg.Redis, cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create cache manager: %w", err)
	}

	limiter := ratelimit.NewLimiter(cfg.Redis, cfg.RateLimits, logger)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter: limiter,
		cache:   cacheManager,
		config:  cfg,
		logger:  logger,
	}, nil
}

// GetJSON performs a GET request against domain and decodes the JSON response
// into out. With WithCacheTTL the decoded body is served from and stored into
// the response cache.
func (c *Client) GetJSON(ctx context.Context, domain, path string, params url.Values, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodGet, domain, path, params, nil, out, opts...)
}

// PostJSON performs a POST request with a JSON body against domain and decodes
// the JSON response into out. POST responses are never cached.
func (c *Client) PostJSON(ctx context.Context, domain, path string, body, out any, opts ...RequestOption) error {
	return c.doJSON(ctx, http.MethodPost, domain, path, nil, body, out, opts...)
}

// doJSON orchestrates one upstream call: cache lookup, rate limit gate,
// request with retry, cache update, JSON decode.
func (c *Client) doJSON(ctx context.Context, method, domain, path string, params url.Values, body, out any, opts ...RequestOption) error {
	options := newRequestOptions(opts)

	baseURL, ok := c.config.BaseURLs[domain]
	if !ok {
		return fmt.Errorf("unknown domain %q", domain)
	}

	fullURL := baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(domain).Observe(time.Since(startTime).Seconds())
	}()

	cacheKey := cache.Key{Domain: domain, Endpoint: path, Params: params}
	cacheable := options.cacheTTL > 0 && method == http.MethodGet

	// Step 1: Check Cache
	if cacheable {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			c.logger.Debug().
				Str("domain", domain).
				Str("endpoint", path).
				Bool("cache_hit", true).
				Msg("Serving response from cache")
			return decodeInto(entry.Data, out)
		}
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", path).Msg("Cache get error")
		}
	}

	// Step 2: Rate Limit Gate
	if err := c.limiter.Acquire(ctx, domain); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	// Step 3: Marshal request body once, retries reuse it
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	// Step 4: Execute HTTP Request with Retry Logic
	c.logger.Debug().
		Str("domain", domain).
		Str("endpoint", path).
		Str("method", method).
		Msg("Executing upstream request")

	var data []byte
	retryErr := retryWithBackoff(ctx, c.logger, c.config.MaxRetries, func() error {
		var err error
		data, err = c.attempt(ctx, method, domain, fullURL, payload, options.headers)
		return err
	})
	if retryErr != nil {
		return retryErr
	}

	// Step 5: Update Cache on success
	if cacheable {
		entry := cache.NewEntry(data, http.StatusOK, options.cacheTTL)
		if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("domain", domain).
				Str("endpoint", path).
				Dur("ttl", options.cacheTTL).
				Msg("Cached response")
		}
	}

	return decodeInto(data, out)
}

// attempt executes a single HTTP request and returns the response body.
// Failures come back as *RequestError carrying the error class.
func (c *Client) attempt(ctx context.Context, method, domain, fullURL string, payload []byte, headers http.Header) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(domain, "network_error").Inc()
		c.logger.Error().Err(err).Str("domain", domain).Msg("HTTP request failed")
		return nil, &RequestError{
			Domain:     domain,
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	requestsTotal.WithLabelValues(domain, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		errClass := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("domain", domain).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Upstream request error")

		return nil, &RequestError{
			Domain:     domain,
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &RequestError{
			Domain:     domain,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	return data, nil
}

// classifyStatus categorizes an HTTP status code for retry handling and
// observability.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// decodeInto unmarshals a JSON response body. A nil out discards the body.
func decodeInto(data []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Cache returns the cache manager (for testing).
func (c *Client) Cache() *cache.Manager {
	return c.cache
}
