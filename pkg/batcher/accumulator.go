package batcher

import "time"

// outcome carries the resolution of a single request: either a value or an error.
type outcome[R any] struct {
	value R
	err   error
}

// item is one caller's pending request inside an accumulator. The done channel
// is buffered so delivery never blocks, even when the caller has stopped waiting.
type item[P, R any] struct {
	params P
	done   chan outcome[R]
}

func newItem[P, R any](params P) *item[P, R] {
	return &item[P, R]{
		params: params,
		done:   make(chan outcome[R], 1),
	}
}

// resolve delivers the outcome for this request. Each item is resolved exactly once.
func (it *item[P, R]) resolve(out outcome[R]) {
	it.done <- out
}

// accumulator collects requests for one future batch. It is created lazily on
// the first request after a flush and detached exactly once, either by the size
// trigger or by its timer. Access is guarded by the owning Batcher's mutex.
type accumulator[P, R any] struct {
	items []*item[P, R]
	timer *time.Timer
}

// add appends a request and reports whether the accumulator reached the size limit.
func (a *accumulator[P, R]) add(it *item[P, R], limit int) bool {
	a.items = append(a.items, it)
	return len(a.items) >= limit
}

// stopTimer cancels the pending flush timer. Safe to call after the timer fired;
// the fired callback recognizes a detached accumulator and does nothing.
func (a *accumulator[P, R]) stopTimer() {
	if a.timer != nil {
		a.timer.Stop()
	}
}

// params returns the collected parameters in submission order.
func (a *accumulator[P, R]) params() []P {
	params := make([]P, len(a.items))
	for i, it := range a.items {
		params[i] = it.params
	}
	return params
}
