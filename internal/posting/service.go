// Package posting implements the journal posting engine: it validates a
// journal entry, applies its balance effects to the account ledger inside a
// single unit of work, and publishes a post-commit event for external
// audit collaborators.
package posting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/apperr"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// DefaultMaxAttempts bounds the retry loop for conflicting concurrent
// writes before the conflict is surfaced to the caller.
const DefaultMaxAttempts = 3

// Service provides the posting engine over a store.
type Service struct {
	store       store.Store
	maxAttempts int
	observers   []Observer
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMaxAttempts overrides the conflict-retry bound.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a posting Service.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, maxAttempts: DefaultMaxAttempts, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Subscribe registers an observer for posted-entry events. Not safe to call
// concurrently with Post.
func (s *Service) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// Post validates and commits a journal entry, returning its assigned id.
// The entry header, its lines, and every balance delta commit in one unit
// of work; a rejected or failed entry changes nothing.
func (s *Service) Post(ctx context.Context, description string, lines []model.JournalLine) (int64, error) {
	if verrs := validateLines(lines); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		return 0, fmt.Errorf("%w: %s", apperr.ErrValidation, strings.Join(msgs, "; "))
	}

	entry := model.JournalEntry{
		Description: description,
		Timestamp:   s.now(),
		Lines:       append([]model.JournalLine(nil), lines...),
	}
	if !entry.Balanced() {
		return 0, fmt.Errorf("%w: debits %s != credits %s",
			apperr.ErrUnbalanced, entry.TotalDebits().StringFixed(2), entry.TotalCredits().StringFixed(2))
	}

	var ev PostedEvent
	err := s.atomically(ctx, func(tx store.Tx) error {
		balances := make(map[string]decimal.Decimal, len(entry.Lines))
		for _, l := range entry.Lines {
			acct, err := tx.Account(l.AccountCode)
			if err != nil {
				return err
			}
			if err := tx.AddToBalance(l.AccountCode, acct.Type.SignedDelta(l.Amount, l.IsDebit)); err != nil {
				return err
			}
		}
		if err := tx.InsertEntry(&entry); err != nil {
			return err
		}
		// Re-read the affected accounts so the event carries committed
		// balances, not locally computed ones.
		for _, l := range entry.Lines {
			acct, err := tx.Account(l.AccountCode)
			if err != nil {
				return err
			}
			balances[l.AccountCode] = acct.Balance
		}
		ev = PostedEvent{
			EntryID:     entry.ID,
			Description: entry.Description,
			Timestamp:   entry.Timestamp,
			Lines:       entry.Lines,
			Balances:    balances,
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, o := range s.observers {
		o.EntryPosted(ev)
	}
	return entry.ID, nil
}

// PostClosing posts a closing entry that zeroes every revenue and expense
// balance into the given equity account, ending the reporting period. It is
// never invoked automatically; a missed close leaves revenue and expense
// running into the next period.
func (s *Service) PostClosing(ctx context.Context, equityCode, description string) (int64, error) {
	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return 0, err
	}

	var lines []model.JournalLine
	net := decimal.Zero
	for _, a := range accounts {
		if a.Balance.IsZero() {
			continue
		}
		switch a.Type {
		case model.AccountTypeRevenue:
			// Zeroing a credit-normal balance takes a debit of the same sign.
			if a.Balance.IsPositive() {
				lines = append(lines, model.JournalLine{AccountCode: a.Code, Amount: a.Balance, IsDebit: true})
			} else {
				lines = append(lines, model.JournalLine{AccountCode: a.Code, Amount: a.Balance.Neg(), IsDebit: false})
			}
			net = net.Add(a.Balance)
		case model.AccountTypeExpense:
			if a.Balance.IsPositive() {
				lines = append(lines, model.JournalLine{AccountCode: a.Code, Amount: a.Balance, IsDebit: false})
			} else {
				lines = append(lines, model.JournalLine{AccountCode: a.Code, Amount: a.Balance.Neg(), IsDebit: true})
			}
			net = net.Sub(a.Balance)
		}
	}
	if len(lines) == 0 {
		return 0, fmt.Errorf("%w: no revenue or expense balances to close", apperr.ErrValidation)
	}

	switch {
	case net.IsPositive():
		lines = append(lines, model.JournalLine{AccountCode: equityCode, Amount: net, IsDebit: false})
	case net.IsNegative():
		lines = append(lines, model.JournalLine{AccountCode: equityCode, Amount: net.Neg(), IsDebit: true})
	}

	return s.Post(ctx, description, lines)
}

// atomically wraps the store's unit of work with a bounded retry on
// concurrent-write conflicts.
func (s *Service) atomically(ctx context.Context, fn func(store.Tx) error) error {
	var err error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		err = s.store.Atomically(ctx, fn)
		if err == nil || !errors.Is(err, apperr.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", s.maxAttempts, err)
}
