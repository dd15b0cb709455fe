package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached upstream response.
type Key struct {
	// Domain is the upstream API domain (e.g., "myvariant")
	Domain string

	// Endpoint is the endpoint path (e.g., "/v1/variant/chr7:g.140453136A>T")
	Endpoint string

	// Params are the query parameters (e.g., {"fields": "all"})
	Params url.Values
}

// String generates a deterministic cache key string.
// Format: biomed:domain:endpoint:param1=val1:param2=val2
//
// Example:
//
//	biomed:myvariant:v1/variant/rs113488022:assembly=hg19:fields=all
func (k Key) String() string {
	parts := []string{"biomed"}

	if k.Domain != "" {
		parts = append(parts, k.Domain)
	}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Params sorted for determinism
	if len(k.Params) > 0 {
		paramKeys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			paramKeys = append(paramKeys, key)
		}
		sort.Strings(paramKeys)

		for _, key := range paramKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
