package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryEpsilon is the absolute tolerance for the per-entry balance check:
// an entry is balanced when |sum(debits) - sum(credits)| <= EntryEpsilon.
var EntryEpsilon = decimal.New(1, -6)

// JournalLine is a single debit or credit within a journal entry. Amount is
// always positive; the side is carried by IsDebit.
type JournalLine struct {
	AccountCode string
	Amount      decimal.Decimal
	IsDebit     bool
}

// JournalEntry is a committed double-entry transaction. Entries are immutable
// once committed; corrections are made by posting new reversing entries.
type JournalEntry struct {
	ID          int64 // monotonic, assigned by the store at commit
	Description string
	Timestamp   time.Time
	Lines       []JournalLine
}

// TotalDebits sums the debit-side line amounts.
func (e JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.IsDebit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// TotalCredits sums the credit-side line amounts.
func (e JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if !l.IsDebit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// Balanced reports whether debits equal credits within EntryEpsilon.
func (e JournalEntry) Balanced() bool {
	return e.TotalDebits().Sub(e.TotalCredits()).Abs().LessThanOrEqual(EntryEpsilon)
}
