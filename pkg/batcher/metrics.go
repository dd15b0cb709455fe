package batcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesDispatched tracks dispatched batches by flush trigger
	BatchesDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biomed_batches_total",
			Help: "Total number of dispatched batches",
		},
		[]string{"trigger"}, // "size", "timer", "manual"
	)

	// BatchSize tracks the number of requests per dispatched batch
	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "biomed_batch_size",
			Help:    "Number of requests per dispatched batch",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128
		},
	)

	// BatchErrors tracks batch dispatches that failed downstream
	BatchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biomed_batch_errors_total",
			Help: "Total number of failed batch dispatches",
		},
	)

	// MissingResults tracks requests left unanswered by short batch responses
	MissingResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "biomed_batch_missing_results_total",
			Help: "Total number of requests resolved with a missing result error",
		},
	)
)
