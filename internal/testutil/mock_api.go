// Package testutil provides testing utilities for the biomed client.
package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock API endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// CapturedRequest records one request the mock server received.
type CapturedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// MockAPI is a configurable mock upstream API server for testing. It stands
// in for MyVariant.info, cBioPortal, and OncoKB, capturing every request so
// tests can assert on batching and caching behavior.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	requests []CapturedRequest
}

// NewMockAPI creates a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		// Restore the body so handlers can decode it themselves
		r.Body = io.NopCloser(bytes.NewReader(body))

		mock.mu.Lock()
		mock.requests = append(mock.requests, CapturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all captured requests.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		w.Header().Set("Content-Type", "application/json")
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns the number of requests made to the server.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// Requests returns a copy of all captured requests in arrival order.
func (m *MockAPI) Requests() []CapturedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CapturedRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestsFor returns the captured requests whose path matches path.
func (m *MockAPI) RequestsFor(path string) []CapturedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []CapturedRequest
	for _, req := range m.requests {
		if req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

// LastRequest returns the most recent captured request, or nil when the
// server has not been called.
func (m *MockAPI) LastRequest() *CapturedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.requests) == 0 {
		return nil
	}
	req := m.requests[len(m.requests)-1]
	return &req
}

// defaultHandler answers unconfigured paths with an empty JSON object.
func (m *MockAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{}`))
}

// NewJSONResponse creates a 200 OK response with a JSON body.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"success": false, "error": "not found"}`,
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}

// VariantDocument returns a MyVariant.info style document for tests.
func VariantDocument(id, rsid, gene string) string {
	return `{
		"_id": "` + id + `",
		"dbsnp": {"rsid": "` + rsid + `"},
		"dbnsfp": {"genename": "` + gene + `", "hgvsp": "p.V600E"},
		"clinvar": {"rcv": {"clinical_significance": "Pathogenic"}},
		"gnomad_genome": {"af": {"af": 0.0000123}},
		"cadd": {"phred": 32.5}
	}`
}

// CuratedGene returns an OncoKB curated gene record for tests.
func CuratedGene(symbol, geneType, level, summary string) string {
	return `{
		"entrezGeneId": 673,
		"hugoSymbol": "` + symbol + `",
		"geneType": "` + geneType + `",
		"highestSensitiveLevel": "` + level + `",
		"summary": "` + summary + `"
	}`
}
