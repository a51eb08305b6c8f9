package clearing

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// Allocation is one obligation's share of a distributed payment. Obligations
// that receive nothing still appear with a zero amount.
type Allocation struct {
	Number string
	Amount decimal.Decimal
}

// candidate is an eligible obligation as seen at allocation time.
type candidate struct {
	number      string
	outstanding decimal.Decimal
	issueDate   time.Time
}

// allocate distributes total across the candidates using the given strategy.
// All strategies are deterministic for the same input set and order, and the
// allocated sum never exceeds min(total, sum of outstanding): any rounding
// remainder is assigned to the last obligation processed.
func allocate(cands []candidate, total decimal.Decimal, strategy model.AllocationStrategy) ([]Allocation, error) {
	switch strategy {
	case model.AllocateProportional:
		return allocateProportional(cands, total), nil
	case model.AllocateOldestFirst:
		ordered := append([]candidate(nil), cands...)
		sort.SliceStable(ordered, func(i, j int) bool {
			if !ordered[i].issueDate.Equal(ordered[j].issueDate) {
				return ordered[i].issueDate.Before(ordered[j].issueDate)
			}
			return ordered[i].number < ordered[j].number
		})
		return allocateGreedy(ordered, total), nil
	case model.AllocateLargestFirst:
		ordered := append([]candidate(nil), cands...)
		sort.SliceStable(ordered, func(i, j int) bool {
			if !ordered[i].outstanding.Equal(ordered[j].outstanding) {
				return ordered[i].outstanding.GreaterThan(ordered[j].outstanding)
			}
			return ordered[i].number < ordered[j].number
		})
		return allocateGreedy(ordered, total), nil
	default:
		return nil, fmt.Errorf("unknown allocation strategy %q", strategy)
	}
}

// allocateProportional gives each obligation total * (outstanding / sum),
// capped at its own outstanding. The last obligation receives whatever
// remains of min(total, sum) so the allocated amounts add up exactly.
func allocateProportional(cands []candidate, total decimal.Decimal) []Allocation {
	sum := decimal.Zero
	for _, c := range cands {
		sum = sum.Add(c.outstanding)
	}
	target := decimal.Min(total, sum)

	out := make([]Allocation, len(cands))
	allocated := decimal.Zero
	for i, c := range cands {
		remaining := target.Sub(allocated)
		var amount decimal.Decimal
		if i == len(cands)-1 {
			amount = remaining
		} else {
			// Division rounding can push a share a hair past what is left
			// of the target; capping at the remainder keeps every
			// allocation, including the last one, non-negative.
			amount = decimal.Min(total.Mul(c.outstanding).Div(sum), c.outstanding)
			if amount.GreaterThan(remaining) {
				amount = remaining
			}
		}
		out[i] = Allocation{Number: c.number, Amount: amount}
		allocated = allocated.Add(amount)
	}
	return out
}

// allocateGreedy walks the pre-sorted candidates assigning
// min(remaining, outstanding) until the payment is exhausted. Later
// obligations get explicit zero allocations rather than being dropped.
func allocateGreedy(ordered []candidate, total decimal.Decimal) []Allocation {
	out := make([]Allocation, len(ordered))
	remaining := total
	for i, c := range ordered {
		amount := decimal.Min(remaining, c.outstanding)
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		out[i] = Allocation{Number: c.number, Amount: amount}
		remaining = remaining.Sub(amount)
	}
	return out
}
