// Package batcher coalesces concurrent single-item requests into batched
// downstream calls.
//
// A Batcher accumulates requests until one of two triggers flushes the batch:
//
// - the accumulated count reaches BatchSize (flushed immediately)
// - BatchTimeout elapses since the batch was opened (flushed by timer)
//
// Each flushed batch results in exactly one downstream call. The batch function
// receives the parameters in submission order and returns one result per
// parameter in the same order; every waiting caller then receives the result at
// its own position. A failed batch call resolves all callers in that batch with
// the same error, and a response with fewer results than requests resolves the
// unmatched callers with a MissingResultError. Batches are independent: a failed
// batch has no effect on later ones.
//
// # Basic Usage
//
//	// The downstream call, shared by all coalesced requests
//	fetch := func(ctx context.Context, ids []string) ([]Annotation, error) {
//		return api.AnnotateBatch(ctx, ids)
//	}
//
//	b, err := batcher.New(fetch, batcher.Config{
//		BatchSize:    25,
//		BatchTimeout: 100 * time.Millisecond,
//	})
//	if err != nil {
//		return err
//	}
//
//	// Concurrent callers share a batch
//	ann, err := b.Do(ctx, "rs113488022")
//
// Cancelling the context passed to Do abandons only that caller's wait; the
// request itself stays in its batch and is still dispatched.
//
// # Metrics
//
// The batcher exports Prometheus metrics:
//
//   - biomed_batches_total{trigger} - Dispatched batches by trigger
//   - biomed_batch_size - Requests per dispatched batch
//   - biomed_batch_errors_total - Failed batch dispatches
//   - biomed_batch_missing_results_total - Requests without a positional result
package batcher
