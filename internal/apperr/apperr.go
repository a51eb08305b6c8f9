// Package apperr defines the error taxonomy shared by the engines. Callers
// classify failures with errors.Is against these sentinels; the concrete
// message carries the detail.
package apperr

import "errors"

var (
	// ErrValidation marks malformed input rejected before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrUnbalanced marks a journal entry whose debits and credits differ by
	// more than the entry tolerance. Rejected before any mutation.
	ErrUnbalanced = errors.New("journal entry is not balanced")

	// ErrNotFound marks a reference to an unknown account or obligation.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate marks an attempt to create a record whose business key
	// already exists.
	ErrDuplicate = errors.New("already exists")

	// ErrConflict marks a concurrent-write conflict detected by the storage
	// layer. Engines retry a bounded number of times before surfacing it.
	ErrConflict = errors.New("concurrent write conflict")

	// ErrNoEligibleObligations marks a multi-obligation clearing call where
	// nothing in the requested set has a positive outstanding balance.
	ErrNoEligibleObligations = errors.New("no eligible obligations")
)
