package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/apperr"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAccounts_InsertAndRead(t *testing.T) {
	st := New()
	ctx := context.Background()

	err := st.Atomically(ctx, func(tx store.Tx) error {
		if err := tx.InsertAccount(model.Account{Code: "2000", Name: "Accounts Payable", Type: model.AccountTypeLiability}); err != nil {
			return err
		}
		return tx.InsertAccount(model.Account{Code: "1000", Name: "Cash", Type: model.AccountTypeAsset})
	})
	require.NoError(t, err)

	all, err := st.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "1000", all[0].Code, "sorted by code")

	a, err := st.Account(ctx, "2000")
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeLiability, a.Type)

	_, err = st.Account(ctx, "9999")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInsertAccount_Invalid(t *testing.T) {
	st := New()
	ctx := context.Background()

	err := st.Atomically(ctx, func(tx store.Tx) error {
		return tx.InsertAccount(model.Account{Code: "1000", Type: model.AccountType("goodwill")})
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = st.Atomically(ctx, func(tx store.Tx) error {
		return tx.InsertAccount(model.Account{Code: "1000", Type: model.AccountTypeAsset})
	})
	require.NoError(t, err)
	err = st.Atomically(ctx, func(tx store.Tx) error {
		return tx.InsertAccount(model.Account{Code: "1000", Type: model.AccountTypeAsset})
	})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)
}

func TestAtomically_FailureDiscardsAllMutations(t *testing.T) {
	st := New()
	ctx := context.Background()

	err := st.Atomically(ctx, func(tx store.Tx) error {
		return tx.InsertAccount(model.Account{Code: "1000", Type: model.AccountTypeAsset})
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = st.Atomically(ctx, func(tx store.Tx) error {
		if err := tx.AddToBalance("1000", dec("500")); err != nil {
			return err
		}
		if err := tx.InsertEntry(&model.JournalEntry{Description: "Doomed"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	a, err := st.Account(ctx, "1000")
	require.NoError(t, err)
	assert.True(t, a.Balance.IsZero())
	entries, err := st.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestInsertEntry_AssignsMonotonicIDs(t *testing.T) {
	st := New()
	ctx := context.Background()

	var first, second model.JournalEntry
	err := st.Atomically(ctx, func(tx store.Tx) error {
		first = model.JournalEntry{Description: "one"}
		if err := tx.InsertEntry(&first); err != nil {
			return err
		}
		second = model.JournalEntry{Description: "two"}
		return tx.InsertEntry(&second)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	e, err := st.Entry(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "two", e.Description)
}

func TestEntryID_NotReusedAfterRollback(t *testing.T) {
	st := New()
	ctx := context.Background()

	boom := errors.New("boom")
	_ = st.Atomically(ctx, func(tx store.Tx) error {
		_ = tx.InsertEntry(&model.JournalEntry{Description: "rolled back"})
		return boom
	})

	var e model.JournalEntry
	err := st.Atomically(ctx, func(tx store.Tx) error {
		e = model.JournalEntry{Description: "kept"}
		return tx.InsertEntry(&e)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID, "rolled-back ids are reclaimed with the state")
}

func TestObligations_CRUD(t *testing.T) {
	st := New()
	ctx := context.Background()

	o := model.Obligation{
		Number: "INV-2024-001", Kind: model.KindReceivable, Counterparty: "Acme Corp",
		Status: model.StatusDraft,
		Lines:  []model.ObligationLine{{Quantity: dec("1"), UnitPrice: dec("100")}},
	}
	err := st.Atomically(ctx, func(tx store.Tx) error { return tx.InsertObligation(o) })
	require.NoError(t, err)

	err = st.Atomically(ctx, func(tx store.Tx) error { return tx.InsertObligation(o) })
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	// Same number under the other kind is a distinct record.
	po := o
	po.Kind = model.KindPayable
	err = st.Atomically(ctx, func(tx store.Tx) error { return tx.InsertObligation(po) })
	require.NoError(t, err)

	got, err := st.Obligation(ctx, model.KindReceivable, "INV-2024-001")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Counterparty)

	list, err := st.Obligations(ctx, model.KindPayable)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddToSettled_SetsDate(t *testing.T) {
	st := New()
	ctx := context.Background()

	o := model.Obligation{
		Number: "INV-2024-001", Kind: model.KindReceivable, Status: model.StatusSent,
		Lines: []model.ObligationLine{{Quantity: dec("1"), UnitPrice: dec("100")}},
	}
	require.NoError(t, st.Atomically(ctx, func(tx store.Tx) error { return tx.InsertObligation(o) }))

	when := date(2024, 3, 1)
	err := st.Atomically(ctx, func(tx store.Tx) error {
		return tx.AddToSettled(model.KindReceivable, "INV-2024-001", dec("40"), when)
	})
	require.NoError(t, err)

	got, err := st.Obligation(ctx, model.KindReceivable, "INV-2024-001")
	require.NoError(t, err)
	assert.True(t, got.SettledAmount.Equal(dec("40")))
	require.NotNil(t, got.SettledDate)
	assert.Equal(t, when, *got.SettledDate)

	err = st.Atomically(ctx, func(tx store.Tx) error {
		return tx.AddToSettled(model.KindReceivable, "INV-2024-099", dec("40"), when)
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSetObligationStatus_RejectsUnknown(t *testing.T) {
	st := New()
	ctx := context.Background()

	o := model.Obligation{
		Number: "INV-2024-001", Kind: model.KindReceivable, Status: model.StatusDraft,
		Lines: []model.ObligationLine{{Quantity: dec("1"), UnitPrice: dec("100")}},
	}
	require.NoError(t, st.Atomically(ctx, func(tx store.Tx) error { return tx.InsertObligation(o) }))

	err := st.Atomically(ctx, func(tx store.Tx) error {
		return tx.SetObligationStatus(model.KindReceivable, "INV-2024-001", model.ObligationStatus("shipped"))
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = st.Atomically(ctx, func(tx store.Tx) error {
		return tx.SetObligationStatus(model.KindReceivable, "INV-2024-001", model.StatusSent)
	})
	require.NoError(t, err)
	got, err := st.Obligation(ctx, model.KindReceivable, "INV-2024-001")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSent, got.Status)
}

func TestReadsReturnCopies(t *testing.T) {
	st := New()
	ctx := context.Background()

	o := model.Obligation{
		Number: "INV-2024-001", Kind: model.KindReceivable, Status: model.StatusDraft,
		Lines: []model.ObligationLine{{Quantity: dec("1"), UnitPrice: dec("100")}},
	}
	require.NoError(t, st.Atomically(ctx, func(tx store.Tx) error { return tx.InsertObligation(o) }))

	got, err := st.Obligation(ctx, model.KindReceivable, "INV-2024-001")
	require.NoError(t, err)
	got.Lines[0].UnitPrice = dec("999")
	got.Status = model.StatusCancelled

	again, err := st.Obligation(ctx, model.KindReceivable, "INV-2024-001")
	require.NoError(t, err)
	assert.True(t, again.Lines[0].UnitPrice.Equal(dec("100")))
	assert.Equal(t, model.StatusDraft, again.Status)
}

func TestInsertClearingRecord_AssignsID(t *testing.T) {
	st := New()
	ctx := context.Background()

	var r model.ClearingRecord
	err := st.Atomically(ctx, func(tx store.Tx) error {
		r = model.ClearingRecord{Kind: model.KindReceivable, ObligationNumber: "INV-2024-001", ClearedAmount: dec("10")}
		return tx.InsertClearingRecord(&r)
	})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)

	records, err := st.ClearingRecords(ctx, model.KindReceivable)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, r.ID, records[0].ID)
}

func TestReplaceAging(t *testing.T) {
	st := New()
	ctx := context.Background()
	day := date(2024, 6, 15)

	mk := func(gen string, n int) []model.AgingEntry {
		out := make([]model.AgingEntry, n)
		for i := range out {
			out[i] = model.AgingEntry{
				GenerationID: gen, ScheduleDate: day, Kind: model.KindReceivable,
				Bucket: model.BucketCurrent, CurrentBalance: dec("10"),
			}
		}
		return out
	}

	require.NoError(t, st.Atomically(ctx, func(tx store.Tx) error {
		return tx.ReplaceAging(day, model.KindReceivable, mk("gen-1", 3))
	}))
	require.NoError(t, st.Atomically(ctx, func(tx store.Tx) error {
		return tx.ReplaceAging(day, model.KindReceivable, mk("gen-2", 2))
	}))

	entries, err := st.AgingEntries(ctx, day, model.KindReceivable)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "gen-2", entries[0].GenerationID)

	// Other dates and kinds are untouched.
	other, err := st.AgingEntries(ctx, day.AddDate(0, 0, 1), model.KindReceivable)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAtomically_CancelledContext(t *testing.T) {
	st := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := st.Atomically(ctx, func(tx store.Tx) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
