// Package metrics provides the centralized Prometheus metrics registry for the
// biomed client. All metrics are defined in their respective packages (client,
// cache, ratelimit, batcher, validation) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the biomed client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - biomed_requests_total{domain, status} (Counter): Total requests by API domain and HTTP status
//   - biomed_request_duration_seconds{domain} (Histogram): Request duration by API domain
//   - biomed_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - biomed_retries_total{error_class} (Counter): Retry attempts by error class
//   - biomed_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - biomed_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - biomed_cache_hits_total{layer} (Counter): Cache hits by layer (memory, redis)
//   - biomed_cache_misses_total (Counter): Cache misses
//   - biomed_cache_errors_total{operation} (Counter): Cache operation errors
//   - biomed_cache_stored_bytes (Histogram): Size of stored cache entries
//
// Rate Limit Metrics (pkg/ratelimit):
//   - biomed_ratelimit_waits_total{domain} (Counter): Requests that had to wait for a window slot
//   - biomed_ratelimit_window_usage{domain} (Gauge): Requests used in the current window
//
// Batcher Metrics (pkg/batcher):
//   - biomed_batches_total{trigger} (Counter): Batches dispatched by trigger (size, timer, manual)
//   - biomed_batch_size (Histogram): Number of items per dispatched batch
//   - biomed_batch_errors_total (Counter): Batch dispatches that failed downstream
//   - biomed_batch_missing_results_total (Counter): Items left unresolved by short responses
//
// Validation Metrics (pkg/validation):
//   - biomed_validation_cache_hits_total (Counter): Scope cache hits
//   - biomed_validation_cache_misses_total (Counter): Scope cache misses
//   - biomed_validation_dedup_total (Counter): Lookups answered by an in-flight call
//   - biomed_validation_failures_total (Counter): Lookup errors recorded as negative entries
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(biomed_cache_hits_total[5m])) /
//   (sum(rate(biomed_cache_hits_total[5m])) + sum(rate(biomed_cache_misses_total[5m])))
//
//   # Mean Batch Size
//   rate(biomed_batch_size_sum[5m]) / rate(biomed_batch_size_count[5m])
//
//   # Request Error Rate
//   rate(biomed_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(biomed_request_duration_seconds_bucket[5m]))
//
//   # Validation Dedup Ratio
//   rate(biomed_validation_dedup_total[5m]) / rate(biomed_validation_cache_misses_total[5m])
