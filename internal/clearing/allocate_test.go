package clearing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/model"
)

func cand(number, outstanding string, issued time.Time) candidate {
	return candidate{number: number, outstanding: dec(outstanding), issueDate: issued}
}

func allocatedSum(allocations []Allocation) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range allocations {
		sum = sum.Add(a.Amount)
	}
	return sum
}

func TestAllocateProportional(t *testing.T) {
	cands := []candidate{
		cand("INV-2024-001", "4000", date(2024, 1, 1)),
		cand("INV-2024-002", "1000", date(2024, 2, 1)),
	}

	allocations, err := allocate(cands, dec("1000"), model.AllocateProportional)
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	assert.True(t, allocations[0].Amount.Equal(dec("800")))
	assert.True(t, allocations[1].Amount.Equal(dec("200")))
}

func TestAllocateProportional_RemainderToLast(t *testing.T) {
	cands := []candidate{
		cand("INV-2024-001", "100", date(2024, 1, 1)),
		cand("INV-2024-002", "100", date(2024, 1, 2)),
		cand("INV-2024-003", "100", date(2024, 1, 3)),
	}

	allocations, err := allocate(cands, dec("100"), model.AllocateProportional)
	require.NoError(t, err)
	require.Len(t, allocations, 3)

	// Thirds do not terminate; the last allocation absorbs the remainder so
	// the total still adds up exactly.
	assert.True(t, allocatedSum(allocations).Equal(dec("100")))
}

func TestAllocateProportional_LastShareNeverNegative(t *testing.T) {
	// The thirds round up at the division precision limit, so uncapped
	// shares would overrun the target and leave the tiny last candidate
	// with a sub-zero remainder.
	total := dec("1.0000000000000001")
	cands := []candidate{
		cand("INV-2024-001", "1", date(2024, 1, 1)),
		cand("INV-2024-002", "1", date(2024, 1, 2)),
		cand("INV-2024-003", "1", date(2024, 1, 3)),
		cand("INV-2024-004", "0.00000000000000001", date(2024, 1, 4)),
	}

	allocations, err := allocate(cands, total, model.AllocateProportional)
	require.NoError(t, err)
	require.Len(t, allocations, 4)
	for _, a := range allocations {
		assert.False(t, a.Amount.IsNegative(), "allocation for %s is negative", a.Number)
	}
	assert.True(t, allocatedSum(allocations).Equal(total))
	assert.True(t, allocations[3].Amount.IsZero())
}

func TestAllocateProportional_PaymentExceedsOutstanding(t *testing.T) {
	cands := []candidate{
		cand("INV-2024-001", "300", date(2024, 1, 1)),
		cand("INV-2024-002", "200", date(2024, 1, 2)),
	}

	allocations, err := allocate(cands, dec("1000"), model.AllocateProportional)
	require.NoError(t, err)
	assert.True(t, allocations[0].Amount.Equal(dec("300")))
	assert.True(t, allocations[1].Amount.Equal(dec("200")))
	assert.True(t, allocatedSum(allocations).Equal(dec("500")))
}

func TestAllocateOldestFirst(t *testing.T) {
	cands := []candidate{
		cand("INV-2024-002", "500", date(2024, 2, 1)),
		cand("INV-2024-001", "500", date(2024, 1, 1)),
	}

	allocations, err := allocate(cands, dec("600"), model.AllocateOldestFirst)
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	assert.Equal(t, "INV-2024-001", allocations[0].Number)
	assert.True(t, allocations[0].Amount.Equal(dec("500")))
	assert.Equal(t, "INV-2024-002", allocations[1].Number)
	assert.True(t, allocations[1].Amount.Equal(dec("100")))
}

func TestAllocateOldestFirst_TieBreaksOnNumber(t *testing.T) {
	same := date(2024, 1, 1)
	cands := []candidate{
		cand("INV-2024-002", "500", same),
		cand("INV-2024-001", "500", same),
	}

	allocations, err := allocate(cands, dec("500"), model.AllocateOldestFirst)
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-001", allocations[0].Number)
	assert.True(t, allocations[0].Amount.Equal(dec("500")))
	assert.True(t, allocations[1].Amount.IsZero())
}

func TestAllocateLargestFirst(t *testing.T) {
	cands := []candidate{
		cand("INV-2024-001", "300", date(2024, 1, 1)),
		cand("INV-2024-002", "700", date(2024, 2, 1)),
	}

	allocations, err := allocate(cands, dec("800"), model.AllocateLargestFirst)
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-002", allocations[0].Number)
	assert.True(t, allocations[0].Amount.Equal(dec("700")))
	assert.Equal(t, "INV-2024-001", allocations[1].Number)
	assert.True(t, allocations[1].Amount.Equal(dec("100")))
}

func TestAllocateGreedy_ZeroAllocationsKept(t *testing.T) {
	cands := []candidate{
		cand("INV-2024-001", "300", date(2024, 1, 1)),
		cand("INV-2024-002", "700", date(2024, 2, 1)),
	}

	allocations, err := allocate(cands, dec("700"), model.AllocateLargestFirst)
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	assert.True(t, allocations[0].Amount.Equal(dec("700")))
	assert.True(t, allocations[1].Amount.IsZero())
}

func TestAllocate_UnknownStrategy(t *testing.T) {
	_, err := allocate([]candidate{cand("INV-2024-001", "100", date(2024, 1, 1))}, dec("100"), model.AllocationStrategy("random"))
	require.Error(t, err)
}
