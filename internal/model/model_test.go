package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseAccountType(t *testing.T) {
	for _, raw := range []string{"asset", "liability", "equity", "revenue", "expense"} {
		got, err := ParseAccountType(raw)
		require.NoError(t, err)
		assert.Equal(t, AccountType(raw), got)
	}

	_, err := ParseAccountType("contra-asset")
	require.Error(t, err)
	_, err = ParseAccountType("")
	require.Error(t, err)
}

func TestSignedDelta(t *testing.T) {
	amount := dec("100.00")

	// Debit-normal accounts: debit increases, credit decreases.
	assert.True(t, AccountTypeAsset.SignedDelta(amount, true).Equal(dec("100.00")))
	assert.True(t, AccountTypeExpense.SignedDelta(amount, false).Equal(dec("-100.00")))

	// Credit-normal accounts: debit decreases, credit increases.
	assert.True(t, AccountTypeLiability.SignedDelta(amount, true).Equal(dec("-100.00")))
	assert.True(t, AccountTypeEquity.SignedDelta(amount, false).Equal(dec("100.00")))
	assert.True(t, AccountTypeRevenue.SignedDelta(amount, false).Equal(dec("100.00")))
}

func TestJournalEntry_Balanced(t *testing.T) {
	entry := JournalEntry{Lines: []JournalLine{
		{AccountCode: "1000", Amount: dec("1000"), IsDebit: true},
		{AccountCode: "3000", Amount: dec("1000"), IsDebit: false},
	}}
	assert.True(t, entry.Balanced())

	entry.Lines[1].Amount = dec("500")
	assert.False(t, entry.Balanced())

	// Within the 1e-6 tolerance still counts as balanced.
	entry.Lines[1].Amount = dec("999.9999995")
	assert.True(t, entry.Balanced())
}

func TestObligationLine_Derived(t *testing.T) {
	line := ObligationLine{Quantity: dec("40"), UnitPrice: dec("150.00"), TaxRate: dec("0.1")}

	assert.True(t, line.Subtotal().Equal(dec("6000.00")))
	assert.True(t, line.TaxAmount().Equal(dec("600.000")))
	assert.True(t, line.Total().Equal(dec("6600.000")))
}

func TestObligation_DerivedTotals(t *testing.T) {
	o := Obligation{
		Number: "INV-2024-001",
		Kind:   KindReceivable,
		Lines: []ObligationLine{
			{Quantity: dec("10"), UnitPrice: dec("250.00"), TaxRate: dec("0.08")},
			{Quantity: dec("5"), UnitPrice: dec("100.00"), TaxRate: dec("0")},
		},
	}

	assert.True(t, o.Subtotal().Equal(dec("3000.00")))
	assert.True(t, o.TotalTax().Equal(dec("200.00")))
	assert.True(t, o.Total().Equal(dec("3200.00")))

	o.SettledAmount = dec("1200.00")
	assert.True(t, o.Outstanding().Equal(dec("2000.00")))
	assert.False(t, o.Settled())

	o.SettledAmount = dec("3200.00")
	assert.True(t, o.Settled())

	// Over-payment: outstanding goes negative, still settled.
	o.SettledAmount = dec("3500.00")
	assert.True(t, o.Outstanding().Equal(dec("-300.00")))
	assert.True(t, o.Settled())
}

func TestObligation_ReceivingRollup(t *testing.T) {
	o := Obligation{
		Kind: KindPayable,
		Lines: []ObligationLine{
			{Quantity: dec("10"), UnitPrice: dec("250.00"), TaxRate: dec("0.08")},
			{Quantity: dec("4"), UnitPrice: dec("50.00")},
		},
	}
	assert.False(t, o.PartiallyReceived())
	assert.False(t, o.FullyReceived())

	o.Lines[0].ReceivedQuantity = dec("10")
	assert.True(t, o.PartiallyReceived())
	assert.False(t, o.FullyReceived())
	assert.True(t, o.ReceivedTotal().Equal(dec("2700.0000")))

	o.Lines[1].ReceivedQuantity = dec("4")
	assert.True(t, o.FullyReceived())
	assert.False(t, o.PartiallyReceived())
}

func TestBucketFor(t *testing.T) {
	assert.Equal(t, BucketCurrent, BucketFor(0))
	assert.Equal(t, Bucket30Days, BucketFor(1))
	assert.Equal(t, Bucket30Days, BucketFor(30))
	assert.Equal(t, Bucket60Days, BucketFor(31))
	assert.Equal(t, Bucket60Days, BucketFor(60))
	assert.Equal(t, Bucket90Days, BucketFor(61))
	assert.Equal(t, Bucket90Days, BucketFor(90))
	assert.Equal(t, BucketOver90, BucketFor(91))
}

func TestParseEnums_RejectUnknown(t *testing.T) {
	_, err := ParseObligationKind("unknown")
	require.Error(t, err)
	_, err = ParseObligationStatus("shipped")
	require.Error(t, err)
	_, err = ParseClearingMethod("installments")
	require.Error(t, err)
	_, err = ParseAllocationStrategy("newest_first")
	require.Error(t, err)

	k, err := ParseObligationKind("payable")
	require.NoError(t, err)
	assert.Equal(t, KindPayable, k)
}

func TestObligation_EffectiveStatus(t *testing.T) {
	o := Obligation{
		Kind:    KindReceivable,
		Status:  StatusSent,
		DueDate: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		Lines:   []ObligationLine{{Quantity: dec("1"), UnitPrice: dec("100")}},
	}

	before := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	after := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, StatusSent, o.EffectiveStatus(before))
	assert.Equal(t, StatusOverdue, o.EffectiveStatus(after))

	o.SettledAmount = dec("100")
	assert.Equal(t, StatusSent, o.EffectiveStatus(after), "settled never reads overdue")

	o.SettledAmount = decimal.Zero
	o.Status = StatusCancelled
	assert.Equal(t, StatusCancelled, o.EffectiveStatus(after))
}

func TestObligation_SettledDateCopy(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	o := Obligation{SettledDate: &d}
	require.NotNil(t, o.SettledDate)
	assert.Equal(t, d, *o.SettledDate)
}
