// Package store defines the persistence port shared by the engines. The
// production adapter is gormstore (MySQL); memstore backs tests and
// standalone use. Both guarantee that everything done inside one Atomically
// call commits or fails as a whole.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// Store is the read surface plus the transactional boundary. Reads outside
// Atomically see a consistent committed snapshot; they never block writers.
type Store interface {
	Accounts(ctx context.Context) ([]model.Account, error)
	Account(ctx context.Context, code string) (model.Account, error)
	Entries(ctx context.Context) ([]model.JournalEntry, error)
	Entry(ctx context.Context, id int64) (model.JournalEntry, error)
	Obligations(ctx context.Context, kind model.ObligationKind) ([]model.Obligation, error)
	Obligation(ctx context.Context, kind model.ObligationKind, number string) (model.Obligation, error)
	ClearingRecords(ctx context.Context, kind model.ObligationKind) ([]model.ClearingRecord, error)
	AgingEntries(ctx context.Context, date time.Time, kind model.ObligationKind) ([]model.AgingEntry, error)

	// Atomically runs fn inside a single unit of work. If fn returns an
	// error, every mutation made through the Tx is discarded. A conflicting
	// concurrent write surfaces as apperr.ErrConflict.
	Atomically(ctx context.Context, fn func(Tx) error) error
}

// Tx is the mutation surface available inside a unit of work. Balance and
// settlement updates are expressed as deltas so the adapter can issue a
// single conditional update instead of a read-then-write pair.
type Tx interface {
	InsertAccount(a model.Account) error
	Account(code string) (model.Account, error)

	// AddToBalance applies a signed delta to an account's running balance.
	AddToBalance(code string, delta decimal.Decimal) error

	// InsertEntry persists an entry header and its lines, assigning the next
	// monotonic id into e.ID.
	InsertEntry(e *model.JournalEntry) error

	InsertObligation(o model.Obligation) error
	Obligation(kind model.ObligationKind, number string) (model.Obligation, error)

	// AddToSettled applies a settlement delta to an obligation and stamps
	// the settled date.
	AddToSettled(kind model.ObligationKind, number string, amount decimal.Decimal, date time.Time) error

	SetObligationStatus(kind model.ObligationKind, number string, status model.ObligationStatus) error

	// ApplyReceipt adds a received quantity to one purchase-order line.
	ApplyReceipt(number string, lineIndex int, quantity decimal.Decimal, date time.Time) error

	InsertClearingRecord(r *model.ClearingRecord) error

	// ReplaceAging removes any prior aging generation for (date, kind) and
	// inserts the given entries in its place.
	ReplaceAging(date time.Time, kind model.ObligationKind, entries []model.AgingEntry) error
}
