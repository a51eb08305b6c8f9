// Package aging computes day-bucket schedules for outstanding obligations.
// Every run is a full recomputation as of a reference date: entries are
// derived facts, never incrementally updated, so reruns for the same date
// and direction are idempotent.
package aging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/apperr"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// Service provides the aging scheduler over a store.
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

// NewService creates an aging Service.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, maxAttempts: 3}
	for _, o := range opts {
		o(s)
	}
	return s
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysOverdue returns how many whole days past due an obligation is as of
// the reference date, floored at zero for not-yet-due obligations.
func DaysOverdue(asOf, due time.Time) int {
	days := int(startOfDay(asOf).Sub(startOfDay(due)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Generate recomputes the aging schedule for every unsettled obligation of
// the given kind as of the reference date, persists the generation
// (replacing any prior rows for the same date and kind), and returns the
// report. Running it twice for the same inputs yields identical computed
// fields under a fresh generation id.
func (s *Service) Generate(ctx context.Context, asOf time.Time, kind model.ObligationKind) (model.AgingReport, error) {
	if _, err := model.ParseObligationKind(string(kind)); err != nil {
		return model.AgingReport{}, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	obligations, err := s.store.Obligations(ctx, kind)
	if err != nil {
		return model.AgingReport{}, err
	}

	report := model.AgingReport{
		ScheduleDate: startOfDay(asOf),
		Kind:         kind,
		GenerationID: uuid.NewString(),
	}

	sort.Slice(obligations, func(i, j int) bool { return obligations[i].Number < obligations[j].Number })
	for _, o := range obligations {
		if o.Status == model.StatusCancelled || o.Settled() {
			continue
		}
		days := DaysOverdue(asOf, o.DueDate)
		report.Entries = append(report.Entries, model.AgingEntry{
			GenerationID:     report.GenerationID,
			ScheduleDate:     report.ScheduleDate,
			Kind:             kind,
			Counterparty:     o.Counterparty,
			ObligationNumber: o.Number,
			OriginalAmount:   o.Total(),
			CurrentBalance:   o.Outstanding(),
			DaysOverdue:      days,
			Bucket:           model.BucketFor(days),
		})
	}
	report.Summary, report.TotalCount, report.TotalAmount = summarize(report.Entries)

	err = s.atomically(ctx, func(tx store.Tx) error {
		return tx.ReplaceAging(report.ScheduleDate, kind, report.Entries)
	})
	if err != nil {
		return model.AgingReport{}, err
	}
	return report, nil
}

// Load rebuilds the report for a previously persisted generation.
func (s *Service) Load(ctx context.Context, date time.Time, kind model.ObligationKind) (model.AgingReport, error) {
	entries, err := s.store.AgingEntries(ctx, date, kind)
	if err != nil {
		return model.AgingReport{}, err
	}
	if len(entries) == 0 {
		return model.AgingReport{}, fmt.Errorf("aging schedule for %s on %s: %w",
			kind, date.Format("2006-01-02"), apperr.ErrNotFound)
	}
	report := model.AgingReport{
		ScheduleDate: startOfDay(date),
		Kind:         kind,
		GenerationID: entries[0].GenerationID,
		Entries:      entries,
	}
	report.Summary, report.TotalCount, report.TotalAmount = summarize(entries)
	return report, nil
}

// OutstandingItem is one row of the outstanding-obligations view.
type OutstandingItem struct {
	Number       string
	Counterparty string
	IssueDate    time.Time
	DueDate      time.Time
	Total        decimal.Decimal
	Settled      decimal.Decimal
	Outstanding  decimal.Decimal
	DaysOverdue  int
}

// Outstanding lists unsettled obligations of a kind, most overdue first,
// optionally filtered by counterparty.
func (s *Service) Outstanding(ctx context.Context, kind model.ObligationKind, counterparty string, asOf time.Time) ([]OutstandingItem, error) {
	obligations, err := s.store.Obligations(ctx, kind)
	if err != nil {
		return nil, err
	}
	var out []OutstandingItem
	for _, o := range obligations {
		if o.Status == model.StatusCancelled || o.Settled() {
			continue
		}
		if counterparty != "" && o.Counterparty != counterparty {
			continue
		}
		out = append(out, OutstandingItem{
			Number:       o.Number,
			Counterparty: o.Counterparty,
			IssueDate:    o.IssueDate,
			DueDate:      o.DueDate,
			Total:        o.Total(),
			Settled:      o.SettledAmount,
			Outstanding:  o.Outstanding(),
			DaysOverdue:  DaysOverdue(asOf, o.DueDate),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysOverdue > out[j].DaysOverdue })
	return out, nil
}

func summarize(entries []model.AgingEntry) (map[model.AgingBucket]model.BucketTotal, int, decimal.Decimal) {
	summary := make(map[model.AgingBucket]model.BucketTotal, len(model.AgingBuckets))
	for _, b := range model.AgingBuckets {
		summary[b] = model.BucketTotal{Amount: decimal.Zero}
	}
	total := decimal.Zero
	for _, e := range entries {
		bt := summary[e.Bucket]
		bt.Count++
		bt.Amount = bt.Amount.Add(e.CurrentBalance)
		summary[e.Bucket] = bt
		total = total.Add(e.CurrentBalance)
	}
	return summary, len(entries), total
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
