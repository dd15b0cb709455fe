package validation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScopeHits tracks checks answered from the scope cache
	ScopeHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biomed_validation_cache_hits_total",
			Help: "Total number of validation checks answered from the scope cache",
		},
	)

	// ScopeMisses tracks checks that required an upstream lookup
	ScopeMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biomed_validation_cache_misses_total",
			Help: "Total number of validation checks not answered from the scope cache",
		},
	)

	// SharedLookups tracks checks resolved by a shared in-flight lookup
	SharedLookups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biomed_validation_dedup_total",
			Help: "Total number of validation checks that shared an in-flight lookup",
		},
	)

	// LookupFailures tracks upstream lookup errors recorded as negative verdicts
	LookupFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biomed_validation_failures_total",
			Help: "Total number of validation lookups that failed and were treated as invalid",
		},
	)
)
