package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/variantlab/biomed-client/pkg/logging"
)

// Entity is one record matched by a validation lookup.
type Entity struct {
	Name    string
	Concept string
}

// LookupResult carries the entities a validation lookup matched for a query.
type LookupResult struct {
	Entities []Entity
}

// LookupFunc performs the upstream existence check for a query within a
// concept (for example "gene"). An empty entity list means the query matched
// nothing.
type LookupFunc func(ctx context.Context, query, concept string) (*LookupResult, error)

// Validator answers boolean existence checks through an upstream lookup,
// consulting the validation scope carried by the context. Lookup failures are
// treated as a negative verdict and are never surfaced to the caller.
type Validator struct {
	lookup  LookupFunc
	concept string
	logger  zerolog.Logger
}

// NewValidator creates a Validator for one concept.
func NewValidator(lookup LookupFunc, concept string) (*Validator, error) {
	if lookup == nil {
		return nil, fmt.Errorf("lookup function is required")
	}
	if concept == "" {
		return nil, fmt.Errorf("concept is required")
	}

	return &Validator{
		lookup:  lookup,
		concept: concept,
		logger:  logging.NewLogger("validation"),
	}, nil
}

// Valid reports whether key exists upstream. Within an active scope the
// verdict is memoized per key and concurrent checks for the same key share a
// single lookup; without a scope every call checks upstream directly.
//
// Keys are compared verbatim: "BRAF" and "braf" are distinct entries.
func (v *Validator) Valid(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}

	scope := ScopeFromContext(ctx)
	if scope == nil {
		return v.check(ctx, key)
	}

	if verdict, ok := scope.verdict(key); ok {
		ScopeHits.Inc()
		v.logger.Debug().
			Str("key", key).
			Bool("valid", verdict).
			Msg("Validation scope hit")
		return verdict
	}
	ScopeMisses.Inc()

	result, _, shared := scope.group.Do(key, func() (interface{}, error) {
		// An earlier flight may have stored the verdict between our
		// miss and this call.
		if verdict, ok := scope.verdict(key); ok {
			return verdict, nil
		}
		verdict := v.check(ctx, key)
		scope.store(key, verdict)
		return verdict, nil
	})
	if shared {
		SharedLookups.Inc()
	}

	return result.(bool)
}

// check performs the upstream lookup. A failed lookup or an empty match set
// both yield a negative verdict.
func (v *Validator) check(ctx context.Context, key string) bool {
	result, err := v.lookup(ctx, key, v.concept)
	if err != nil {
		LookupFailures.Inc()
		v.logger.Warn().
			Err(err).
			Str("key", key).
			Str("concept", v.concept).
			Msg("Validation lookup failed, treating as invalid")
		return false
	}
	if result == nil {
		return false
	}

	for _, e := range result.Entities {
		// Entities without a concept come from backends that do not
		// echo it; the lookup itself was already concept-filtered.
		if e.Concept == "" || strings.EqualFold(e.Concept, v.concept) {
			return true
		}
	}
	return false
}
