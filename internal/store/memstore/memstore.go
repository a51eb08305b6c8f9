// Package memstore is an in-memory store adapter. Each unit of work runs
// against a clone of the current state under a single lock and is swapped in
// only on success, so a failed transaction leaves nothing behind. It backs
// the test suite and standalone use without a database server.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/apperr"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

type obligationKey struct {
	kind   model.ObligationKind
	number string
}

type state struct {
	accounts    map[string]model.Account
	entries     map[int64]model.JournalEntry
	nextEntryID int64
	obligations map[obligationKey]model.Obligation
	clearings   []model.ClearingRecord
	aging       []model.AgingEntry
}

// Store is the in-memory adapter. The zero value is not usable; call New.
type Store struct {
	mu sync.Mutex
	st *state
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{st: &state{
		accounts:    make(map[string]model.Account),
		entries:     make(map[int64]model.JournalEntry),
		obligations: make(map[obligationKey]model.Obligation),
	}}
}

var _ store.Store = (*Store)(nil)

func cloneEntry(e model.JournalEntry) model.JournalEntry {
	e.Lines = append([]model.JournalLine(nil), e.Lines...)
	return e
}

func cloneObligation(o model.Obligation) model.Obligation {
	o.Lines = append([]model.ObligationLine(nil), o.Lines...)
	for i, l := range o.Lines {
		if l.ReceivedDate != nil {
			d := *l.ReceivedDate
			o.Lines[i].ReceivedDate = &d
		}
	}
	if o.SettledDate != nil {
		d := *o.SettledDate
		o.SettledDate = &d
	}
	return o
}

func (s *state) clone() *state {
	c := &state{
		accounts:    make(map[string]model.Account, len(s.accounts)),
		entries:     make(map[int64]model.JournalEntry, len(s.entries)),
		nextEntryID: s.nextEntryID,
		obligations: make(map[obligationKey]model.Obligation, len(s.obligations)),
		clearings:   append([]model.ClearingRecord(nil), s.clearings...),
		aging:       append([]model.AgingEntry(nil), s.aging...),
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = cloneEntry(v)
	}
	for k, v := range s.obligations {
		c.obligations[k] = cloneObligation(v)
	}
	return c
}

// Accounts returns all accounts sorted by code.
func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Account, 0, len(s.st.accounts))
	for _, a := range s.st.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Account returns one account by code.
func (s *Store) Account(ctx context.Context, code string) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.st.accounts[code]
	if !ok {
		return model.Account{}, fmt.Errorf("account %s: %w", code, apperr.ErrNotFound)
	}
	return a, nil
}

// Entries returns all journal entries ordered by id.
func (s *Store) Entries(ctx context.Context) ([]model.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.JournalEntry, 0, len(s.st.entries))
	for _, e := range s.st.entries {
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Entry returns one journal entry by id.
func (s *Store) Entry(ctx context.Context, id int64) (model.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.st.entries[id]
	if !ok {
		return model.JournalEntry{}, fmt.Errorf("journal entry %d: %w", id, apperr.ErrNotFound)
	}
	return cloneEntry(e), nil
}

// Obligations returns all obligations of a kind sorted by number.
func (s *Store) Obligations(ctx context.Context, kind model.ObligationKind) ([]model.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Obligation
	for k, o := range s.st.obligations {
		if k.kind == kind {
			out = append(out, cloneObligation(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// Obligation returns one obligation by kind and number.
func (s *Store) Obligation(ctx context.Context, kind model.ObligationKind, number string) (model.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.obligations[obligationKey{kind, number}]
	if !ok {
		return model.Obligation{}, fmt.Errorf("%s %s: %w", kind, number, apperr.ErrNotFound)
	}
	return cloneObligation(o), nil
}

// ClearingRecords returns all clearing records of a kind in insert order.
func (s *Store) ClearingRecords(ctx context.Context, kind model.ObligationKind) ([]model.ClearingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ClearingRecord
	for _, r := range s.st.clearings {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// AgingEntries returns the persisted aging generation for a date and kind.
func (s *Store) AgingEntries(ctx context.Context, date time.Time, kind model.ObligationKind) ([]model.AgingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.AgingEntry
	for _, e := range s.st.aging {
		if e.Kind == kind && sameDay(e.ScheduleDate, date) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Atomically runs fn against a clone of the state and swaps it in on success.
func (s *Store) Atomically(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st.clone()
	if err := fn(&tx{st: next}); err != nil {
		return err
	}
	s.st = next
	return nil
}

type tx struct {
	st *state
}

var _ store.Tx = (*tx)(nil)

func (t *tx) InsertAccount(a model.Account) error {
	if !a.Type.Valid() {
		return fmt.Errorf("%w: account %s has invalid type %q", apperr.ErrValidation, a.Code, a.Type)
	}
	if _, ok := t.st.accounts[a.Code]; ok {
		return fmt.Errorf("account %s: %w", a.Code, apperr.ErrDuplicate)
	}
	t.st.accounts[a.Code] = a
	return nil
}

func (t *tx) Account(code string) (model.Account, error) {
	a, ok := t.st.accounts[code]
	if !ok {
		return model.Account{}, fmt.Errorf("account %s: %w", code, apperr.ErrNotFound)
	}
	return a, nil
}

func (t *tx) AddToBalance(code string, delta decimal.Decimal) error {
	a, ok := t.st.accounts[code]
	if !ok {
		return fmt.Errorf("account %s: %w", code, apperr.ErrNotFound)
	}
	a.Balance = a.Balance.Add(delta)
	t.st.accounts[code] = a
	return nil
}

func (t *tx) InsertEntry(e *model.JournalEntry) error {
	t.st.nextEntryID++
	e.ID = t.st.nextEntryID
	t.st.entries[e.ID] = cloneEntry(*e)
	return nil
}

func (t *tx) InsertObligation(o model.Obligation) error {
	if _, err := model.ParseObligationKind(string(o.Kind)); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if _, err := model.ParseObligationStatus(string(o.Status)); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	key := obligationKey{o.Kind, o.Number}
	if _, ok := t.st.obligations[key]; ok {
		return fmt.Errorf("%s %s: %w", o.Kind, o.Number, apperr.ErrDuplicate)
	}
	t.st.obligations[key] = cloneObligation(o)
	return nil
}

func (t *tx) Obligation(kind model.ObligationKind, number string) (model.Obligation, error) {
	o, ok := t.st.obligations[obligationKey{kind, number}]
	if !ok {
		return model.Obligation{}, fmt.Errorf("%s %s: %w", kind, number, apperr.ErrNotFound)
	}
	return cloneObligation(o), nil
}

func (t *tx) AddToSettled(kind model.ObligationKind, number string, amount decimal.Decimal, date time.Time) error {
	key := obligationKey{kind, number}
	o, ok := t.st.obligations[key]
	if !ok {
		return fmt.Errorf("%s %s: %w", kind, number, apperr.ErrNotFound)
	}
	o = cloneObligation(o)
	o.SettledAmount = o.SettledAmount.Add(amount)
	o.SettledDate = &date
	t.st.obligations[key] = o
	return nil
}

func (t *tx) SetObligationStatus(kind model.ObligationKind, number string, status model.ObligationStatus) error {
	if _, err := model.ParseObligationStatus(string(status)); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	key := obligationKey{kind, number}
	o, ok := t.st.obligations[key]
	if !ok {
		return fmt.Errorf("%s %s: %w", kind, number, apperr.ErrNotFound)
	}
	o.Status = status
	t.st.obligations[key] = o
	return nil
}

func (t *tx) ApplyReceipt(number string, lineIndex int, quantity decimal.Decimal, date time.Time) error {
	key := obligationKey{model.KindPayable, number}
	o, ok := t.st.obligations[key]
	if !ok {
		return fmt.Errorf("%s %s: %w", model.KindPayable, number, apperr.ErrNotFound)
	}
	if lineIndex < 0 || lineIndex >= len(o.Lines) {
		return fmt.Errorf("%s line %d: %w", number, lineIndex, apperr.ErrNotFound)
	}
	o = cloneObligation(o)
	o.Lines[lineIndex].ReceivedQuantity = o.Lines[lineIndex].ReceivedQuantity.Add(quantity)
	o.Lines[lineIndex].ReceivedDate = &date
	t.st.obligations[key] = o
	return nil
}

func (t *tx) InsertClearingRecord(r *model.ClearingRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	t.st.clearings = append(t.st.clearings, *r)
	return nil
}

func (t *tx) ReplaceAging(date time.Time, kind model.ObligationKind, entries []model.AgingEntry) error {
	kept := t.st.aging[:0:0]
	for _, e := range t.st.aging {
		if e.Kind == kind && sameDay(e.ScheduleDate, date) {
			continue
		}
		kept = append(kept, e)
	}
	t.st.aging = append(kept, entries...)
	return nil
}
