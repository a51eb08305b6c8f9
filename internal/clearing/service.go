// Package clearing implements the payment clearing engine: applying a
// payment against one obligation, or distributing one payment across many
// using a pluggable allocation strategy. Every application writes one
// immutable clearing record.
package clearing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/apperr"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// Service provides the clearing engine over a store.
type Service struct {
	store       store.Store
	maxAttempts int
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

// NewService creates a clearing Service.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, maxAttempts: 3}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ClearingResult reports one payment application: the audit record written
// and the obligation state after it.
type ClearingResult struct {
	Record     model.ClearingRecord
	Obligation model.Obligation
}

// AllocationResult reports a multi-obligation clearing call.
type AllocationResult struct {
	Reference   string
	Strategy    model.AllocationStrategy
	TotalAmount decimal.Decimal
	Allocations []Allocation
	Results     []ClearingResult
}

// ClearOne applies a payment amount against a single obligation. Over-payment
// is not rejected: the resulting remaining amount is recorded signed and may
// go negative; surfacing credit balances is the report layer's job. Fails
// with ErrNotFound if the obligation is unknown or already fully settled.
func (s *Service) ClearOne(ctx context.Context, kind model.ObligationKind, number string, amount decimal.Decimal, date time.Time, reference string, method model.ClearingMethod) (ClearingResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ClearingResult{}, fmt.Errorf("%w: payment amount %s is not positive", apperr.ErrValidation, amount)
	}
	if _, err := model.ParseClearingMethod(string(method)); err != nil {
		return ClearingResult{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	var result ClearingResult
	err := s.atomically(ctx, func(tx store.Tx) error {
		o, err := tx.Obligation(kind, number)
		if err != nil {
			return err
		}
		if o.Settled() {
			return fmt.Errorf("%s %s is already settled: %w", kind, number, apperr.ErrNotFound)
		}
		result, err = applyPayment(tx, o, amount, date, reference, method)
		return err
	})
	if err != nil {
		return ClearingResult{}, err
	}
	return result, nil
}

// ClearMany distributes a payment across several obligations of one kind
// using the given allocation strategy, then applies each non-zero share as
// an individual clearing with method "multiple" and a reference suffixed by
// the obligation number. Fails with ErrNoEligibleObligations when nothing
// in the set has a positive outstanding balance.
func (s *Service) ClearMany(ctx context.Context, kind model.ObligationKind, numbers []string, totalAmount decimal.Decimal, date time.Time, reference string, strategy model.AllocationStrategy) (AllocationResult, error) {
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return AllocationResult{}, fmt.Errorf("%w: payment amount %s is not positive", apperr.ErrValidation, totalAmount)
	}
	if _, err := model.ParseAllocationStrategy(string(strategy)); err != nil {
		return AllocationResult{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if len(numbers) == 0 {
		return AllocationResult{}, fmt.Errorf("%w: no obligations given", apperr.ErrValidation)
	}

	result := AllocationResult{Reference: reference, Strategy: strategy, TotalAmount: totalAmount}
	err := s.atomically(ctx, func(tx store.Tx) error {
		result.Allocations = nil
		result.Results = nil

		byNumber := make(map[string]model.Obligation, len(numbers))
		var cands []candidate
		for _, n := range numbers {
			o, err := tx.Obligation(kind, n)
			if err != nil {
				return err
			}
			byNumber[n] = o
			if o.Outstanding().GreaterThan(decimal.Zero) {
				cands = append(cands, candidate{number: n, outstanding: o.Outstanding(), issueDate: o.IssueDate})
			}
		}
		if len(cands) == 0 {
			return apperr.ErrNoEligibleObligations
		}

		allocations, err := allocate(cands, totalAmount, strategy)
		if err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
		}
		result.Allocations = allocations

		for _, a := range allocations {
			if !a.Amount.GreaterThan(decimal.Zero) {
				continue
			}
			res, err := applyPayment(tx, byNumber[a.Number], a.Amount, date,
				fmt.Sprintf("%s-%s", reference, a.Number), model.MethodMultiple)
			if err != nil {
				return err
			}
			result.Results = append(result.Results, res)
		}
		return nil
	})
	if err != nil {
		return AllocationResult{}, err
	}
	return result, nil
}

// applyPayment is the single settlement primitive shared by ClearOne and
// ClearMany: it adds to the settled amount, rolls the status, and writes
// the audit record, all within the caller's unit of work.
func applyPayment(tx store.Tx, o model.Obligation, amount decimal.Decimal, date time.Time, reference string, method model.ClearingMethod) (ClearingResult, error) {
	if err := tx.AddToSettled(o.Kind, o.Number, amount, date); err != nil {
		return ClearingResult{}, err
	}

	updated, err := tx.Obligation(o.Kind, o.Number)
	if err != nil {
		return ClearingResult{}, err
	}
	if o.Kind == model.KindReceivable && updated.Settled() && updated.Status != model.StatusCancelled {
		if err := tx.SetObligationStatus(o.Kind, o.Number, model.StatusPaid); err != nil {
			return ClearingResult{}, err
		}
		updated.Status = model.StatusPaid
	}

	record := model.ClearingRecord{
		ClearingDate:     date,
		Kind:             o.Kind,
		Reference:        reference,
		ObligationNumber: o.Number,
		Counterparty:     o.Counterparty,
		OriginalAmount:   o.Total(),
		ClearedAmount:    amount,
		RemainingAmount:  updated.Outstanding(),
		Method:           method,
	}
	if err := tx.InsertClearingRecord(&record); err != nil {
		return ClearingResult{}, err
	}
	return ClearingResult{Record: record, Obligation: updated}, nil
}

// Summary aggregates clearing records of a kind within a date range
// (inclusive).
type Summary struct {
	Kind         model.ObligationKind
	From, To     time.Time
	Count        int
	TotalCleared decimal.Decimal
	ByMethod     map[model.ClearingMethod]decimal.Decimal
}

// Summarize builds a payment summary from the persisted clearing records.
func (s *Service) Summarize(ctx context.Context, kind model.ObligationKind, from, to time.Time) (Summary, error) {
	records, err := s.store.ClearingRecords(ctx, kind)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		Kind: kind, From: from, To: to,
		TotalCleared: decimal.Zero,
		ByMethod:     make(map[model.ClearingMethod]decimal.Decimal),
	}
	for _, r := range records {
		if r.ClearingDate.Before(from) || r.ClearingDate.After(to) {
			continue
		}
		sum.Count++
		sum.TotalCleared = sum.TotalCleared.Add(r.ClearedAmount)
		prev, ok := sum.ByMethod[r.Method]
		if !ok {
			prev = decimal.Zero
		}
		sum.ByMethod[r.Method] = prev.Add(r.ClearedAmount)
	}
	return sum, nil
}

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
