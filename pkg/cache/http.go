package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResponseToEntry converts an HTTP response into a cache entry that expires
// after ttl. It reads the response body and restores it for the caller.
//
// The upstream APIs publish no cache headers worth honoring, so the lifetime
// of an entry is always chosen by the caller per endpoint.
func ResponseToEntry(resp *http.Response, ttl time.Duration) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()

	// Restore body for caller
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return NewEntry(body, resp.StatusCode, ttl), nil
}
