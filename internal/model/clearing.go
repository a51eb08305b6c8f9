package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ClearingMethod records how a payment application was made.
type ClearingMethod string

const (
	MethodFull     ClearingMethod = "full"
	MethodPartial  ClearingMethod = "partial"
	MethodMultiple ClearingMethod = "multiple"
)

// ParseClearingMethod validates a raw clearing method string.
func ParseClearingMethod(s string) (ClearingMethod, error) {
	switch m := ClearingMethod(s); m {
	case MethodFull, MethodPartial, MethodMultiple:
		return m, nil
	default:
		return "", fmt.Errorf("unknown clearing method %q", s)
	}
}

// AllocationStrategy selects how a single payment is distributed across
// multiple outstanding obligations.
type AllocationStrategy string

const (
	AllocateProportional AllocationStrategy = "proportional"
	AllocateOldestFirst  AllocationStrategy = "oldest_first"
	AllocateLargestFirst AllocationStrategy = "largest_first"
)

// ParseAllocationStrategy validates a raw strategy string.
func ParseAllocationStrategy(s string) (AllocationStrategy, error) {
	switch a := AllocationStrategy(s); a {
	case AllocateProportional, AllocateOldestFirst, AllocateLargestFirst:
		return a, nil
	default:
		return "", fmt.Errorf("unknown allocation strategy %q", s)
	}
}

// ClearingRecord is the immutable audit row written for every payment
// application. Records are append-only facts and never mutated.
type ClearingRecord struct {
	ID               string // surrogate id, assigned at insert
	ClearingDate     time.Time
	Kind             ObligationKind
	Reference        string
	ObligationNumber string
	Counterparty     string
	OriginalAmount   decimal.Decimal
	ClearedAmount    decimal.Decimal
	RemainingAmount  decimal.Decimal // signed; negative means a credit balance
	Method           ClearingMethod
}
