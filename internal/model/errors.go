package model

import "errors"

var (
	// ErrStorageConflict is returned by a store when the chain tail moved
	// between reading it and appending the next block.
	ErrStorageConflict = errors.New("ledger storage conflict")
	// ErrAppendRetriesExhausted is returned when conflicts persist past the retry budget.
	ErrAppendRetriesExhausted = errors.New("ledger append retries exhausted")
)
