package batcher

import (
	"errors"
	"fmt"
)

// Common errors returned by the batcher.
var (
	// ErrMissingResult is returned when a batch call yields no result for a request.
	ErrMissingResult = errors.New("batch call returned no result for request")
)

// MissingResultError reports a request that the downstream batch call left
// unanswered. It occurs when the batch function returns fewer results than
// the number of submitted requests.
type MissingResultError struct {
	// Index is the position of the request within its batch.
	Index int

	// BatchLen is the number of requests in the dispatched batch.
	BatchLen int

	// Returned is the number of results the batch function produced.
	Returned int
}

// Error implements the error interface.
func (e *MissingResultError) Error() string {
	return fmt.Sprintf("batch call returned no result for request %d of %d (%d results returned)",
		e.Index+1, e.BatchLen, e.Returned)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *MissingResultError) Unwrap() error {
	return ErrMissingResult
}
