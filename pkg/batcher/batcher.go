package batcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/variantlab/biomed-client/pkg/logging"
)

// Flush triggers, used as metric and log labels.
const (
	triggerSize   = "size"
	triggerTimer  = "timer"
	triggerManual = "manual"
)

// BatchFunc performs one downstream call for a whole batch. It receives the
// collected parameters in submission order and must return one result per
// parameter, in the same order. Returning fewer results resolves the unmatched
// requests with a MissingResultError; surplus results are ignored.
type BatchFunc[P, R any] func(ctx context.Context, params []P) ([]R, error)

// Config holds batcher configuration.
type Config struct {
	// BatchSize is the number of requests that triggers an immediate flush.
	BatchSize int

	// BatchTimeout is the maximum time a batch waits for further requests
	// before it is flushed regardless of size.
	BatchTimeout time.Duration
}

// DefaultConfig returns a default batcher configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:    25,
		BatchTimeout: 100 * time.Millisecond,
	}
}

// Batcher coalesces concurrent single-item requests into batched downstream
// calls. Requests accumulate until either BatchSize is reached or BatchTimeout
// elapses, whichever comes first; the accumulated batch is then dispatched in
// a single call and each caller receives its positional result.
type Batcher[P, R any] struct {
	fn     BatchFunc[P, R]
	config Config
	logger zerolog.Logger

	mu  sync.Mutex
	cur *accumulator[P, R]
}

// New creates a Batcher that dispatches batches through fn.
func New[P, R any](fn BatchFunc[P, R], config Config) (*Batcher[P, R], error) {
	if fn == nil {
		return nil, fmt.Errorf("batch function is required")
	}
	if config.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", config.BatchSize)
	}
	if config.BatchTimeout <= 0 {
		return nil, fmt.Errorf("batch timeout must be positive, got %v", config.BatchTimeout)
	}

	return &Batcher[P, R]{
		fn:     fn,
		config: config,
		logger: logging.NewLogger("batcher"),
	}, nil
}

// Do submits one request and blocks until its batch has been dispatched and a
// result is available. Requests submitted concurrently share a batch.
//
// Cancelling ctx abandons only this caller's wait: the request stays in its
// batch, the batch is still dispatched, and the orphaned result is discarded.
func (b *Batcher[P, R]) Do(ctx context.Context, params P) (R, error) {
	it := newItem[P, R](params)

	// Append and check the size trigger in one critical section, so no
	// competing caller or timer can slip between the two steps.
	b.mu.Lock()
	if b.cur == nil {
		b.cur = b.newAccumulator()
	}
	var full *accumulator[P, R]
	if b.cur.add(it, b.config.BatchSize) {
		full = b.detachLocked()
	}
	b.mu.Unlock()

	if full != nil {
		go b.dispatch(full, triggerSize)
	}

	select {
	case out := <-it.done:
		return out.value, out.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Flush dispatches whatever is currently accumulated without waiting for the
// size or timer trigger. It blocks until the dispatched batch has resolved.
// A Flush with nothing pending is a no-op.
func (b *Batcher[P, R]) Flush() {
	b.mu.Lock()
	acc := b.detachLocked()
	b.mu.Unlock()

	if acc != nil {
		b.dispatch(acc, triggerManual)
	}
}

// newAccumulator opens a fresh accumulator and arms its flush timer.
// Callers must hold b.mu.
func (b *Batcher[P, R]) newAccumulator() *accumulator[P, R] {
	acc := &accumulator[P, R]{}
	acc.timer = time.AfterFunc(b.config.BatchTimeout, func() {
		b.flushExpired(acc)
	})
	return acc
}

// detachLocked removes the current accumulator so the next request starts a new
// batch. Callers must hold b.mu. Returns nil when nothing is accumulated.
func (b *Batcher[P, R]) detachLocked() *accumulator[P, R] {
	acc := b.cur
	if acc == nil {
		return nil
	}
	acc.stopTimer()
	b.cur = nil
	return acc
}

// flushExpired handles a fired timer. The timer belongs to one specific
// accumulator: if that accumulator has already been detached by the size
// trigger or a manual flush, the timer does nothing.
func (b *Batcher[P, R]) flushExpired(acc *accumulator[P, R]) {
	b.mu.Lock()
	if b.cur != acc {
		b.mu.Unlock()
		return
	}
	b.cur = nil
	b.mu.Unlock()

	if len(acc.items) == 0 {
		return
	}
	b.dispatch(acc, triggerTimer)
}

// dispatch performs the downstream call for a detached accumulator and resolves
// every pending request exactly once. On downstream failure all requests in the
// batch receive the same error. The call runs with a background context because
// the batch is shared by all its callers and outlives any single one of them.
func (b *Batcher[P, R]) dispatch(acc *accumulator[P, R], trigger string) {
	params := acc.params()

	BatchesDispatched.WithLabelValues(trigger).Inc()
	BatchSize.Observe(float64(len(params)))
	b.logger.Debug().
		Int("batch_size", len(params)).
		Str("trigger", trigger).
		Msg("Dispatching batch")

	results, err := b.fn(context.Background(), params)
	if err != nil {
		BatchErrors.Inc()
		b.logger.Warn().
			Err(err).
			Int("batch_size", len(params)).
			Str("trigger", trigger).
			Msg("Batch dispatch failed")

		for _, it := range acc.items {
			it.resolve(outcome[R]{err: err})
		}
		return
	}

	if len(results) > len(acc.items) {
		b.logger.Warn().
			Int("batch_size", len(acc.items)).
			Int("results", len(results)).
			Msg("Batch call returned surplus results")
	}

	for i, it := range acc.items {
		if i < len(results) {
			it.resolve(outcome[R]{value: results[i]})
			continue
		}
		MissingResults.Inc()
		it.resolve(outcome[R]{err: &MissingResultError{
			Index:    i,
			BatchLen: len(acc.items),
			Returned: len(results),
		}})
	}
}
