package multicall

import "errors"

var (
	// ErrEmptyBatch is returned by Execute when no calls have been added.
	ErrEmptyBatch = errors.New("multicall: empty batch")

	// ErrBatchLengthMismatch is returned when the aggregate response
	// holds a different number of results than calls were submitted.
	// It indicates a transport or protocol bug, never a per-call revert.
	ErrBatchLengthMismatch = errors.New("multicall: result count does not match call count")
)
