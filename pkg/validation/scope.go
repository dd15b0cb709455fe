// Package validation provides memoized existence checks for biomedical
// identifiers, scoped to a single logical operation.
//
// A scope is attached to a context with WithScope and travels with it through
// the call tree. Within one scope, each key is checked upstream at most once:
// repeated checks return the memoized verdict and concurrent checks for the
// same key share one in-flight lookup. Discarding the context discards the
// scope.
//
//	ctx := validation.WithScope(ctx)
//	if validator.Valid(ctx, "BRAF") {
//		// every later Valid(ctx, "BRAF") is answered from the scope
//	}
//
// Without a scope, Valid degrades to a direct upstream check with no
// memoization.
package validation

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// scopeKey is the context key for the active scope.
type scopeKey struct{}

// Scope memoizes validation verdicts for one logical operation. Keys are
// stored verbatim, so lookups are case-sensitive.
type Scope struct {
	mu      sync.RWMutex
	entries map[string]bool
	group   singleflight.Group
}

func newScope() *Scope {
	return &Scope{
		entries: make(map[string]bool),
	}
}

// WithScope returns a context carrying a fresh validation scope. If ctx
// already carries a scope, ctx is returned unchanged, so nested entries share
// the outer scope rather than shadowing it.
func WithScope(ctx context.Context) context.Context {
	if ScopeFromContext(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, scopeKey{}, newScope())
}

// ScopeFromContext returns the active validation scope, or nil when ctx
// carries none.
func ScopeFromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// verdict returns the memoized verdict for key, if one is stored.
func (s *Scope) verdict(key string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// store records the verdict for key.
func (s *Scope) store(key string, valid bool) {
	s.mu.Lock()
	s.entries[key] = valid
	s.mu.Unlock()
}
