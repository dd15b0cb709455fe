package client

import (
	"net/http"
	"time"
)

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

// requestOptions collects the per-request settings applied through
// RequestOption values.
type requestOptions struct {
	cacheTTL time.Duration
	headers  http.Header
}

func newRequestOptions(opts []RequestOption) requestOptions {
	options := requestOptions{
		headers: make(http.Header),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// WithCacheTTL stores the response in the cache for ttl. The upstream APIs
// publish no cache headers, so every cacheable endpoint declares its own
// lifetime this way. A zero ttl leaves the response uncached.
//
// Only GET responses are cached; the option has no effect on POST requests.
func WithCacheTTL(ttl time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.cacheTTL = ttl
	}
}

// WithHeader adds a header to the request, for example an OncoKB
// authorization token.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers.Add(key, value)
	}
}
