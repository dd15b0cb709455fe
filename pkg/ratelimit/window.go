// Package ratelimit implements per-domain request rate gating for upstream
// biomedical APIs. Each domain has a fixed request budget per time window;
// Acquire blocks until a slot is free. With a Redis client the window counters
// are shared across processes, otherwise they are process-local.
package ratelimit

import (
	"time"
)

// Limit is a fixed-window request budget.
type Limit struct {
	// Requests is the number of requests allowed per window.
	Requests int

	// Window is the window length.
	Window time.Duration
}

// DefaultLimits returns conservative request budgets for the public upstream
// APIs, matching their published fair-use policies.
func DefaultLimits() map[string]Limit {
	return map[string]Limit{
		"myvariant":  {Requests: 10, Window: time.Second},
		"cbioportal": {Requests: 5, Window: time.Second},
		"oncokb":     {Requests: 5, Window: time.Second},
	}
}

// window tracks request usage for one domain within the current fixed window.
type window struct {
	start time.Time
	count int
}

// expired returns true once the window has run its full length.
func (w *window) expired(now time.Time, limit Limit) bool {
	return now.Sub(w.start) >= limit.Window
}

// resetsIn returns the duration until the window ends.
func (w *window) resetsIn(now time.Time, limit Limit) time.Duration {
	return w.start.Add(limit.Window).Sub(now)
}
