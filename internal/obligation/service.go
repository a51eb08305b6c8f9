// Package obligation manages invoices (receivables) and purchase orders
// (payables): creation with derived totals, lifecycle status, and the
// per-line receiving flow for purchase orders. Settlement amounts are
// mutated only by the clearing engine.
package obligation

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

// Service provides obligation lifecycle operations over a store.
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

// NewService creates an obligation Service.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, maxAttempts: 3}
	for _, o := range opts {
		o(s)
	}
	return s
}

// LineParams describes one line item on a new obligation.
type LineParams struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
}

// CreateParams holds parameters for creating an invoice or purchase order.
type CreateParams struct {
	Number              string
	Counterparty        string
	CounterpartyAddress string
	IssueDate           time.Time
	DueDate             time.Time
	Lines               []LineParams
	Notes               string
}

func (p CreateParams) validate() error {
	var problems []string
	if p.Number == "" {
		problems = append(problems, "missing number")
	}
	if p.Counterparty == "" {
		problems = append(problems, "missing counterparty")
	}
	if len(p.Lines) == 0 {
		problems = append(problems, "no line items")
	}
	if p.DueDate.Before(p.IssueDate) {
		problems = append(problems, "due date before issue date")
	}
	for i, l := range p.Lines {
		if l.Quantity.LessThanOrEqual(decimal.Zero) {
			problems = append(problems, fmt.Sprintf("line %d: quantity %s is not positive", i, l.Quantity))
		}
		if l.UnitPrice.IsNegative() {
			problems = append(problems, fmt.Sprintf("line %d: negative unit price", i))
		}
		if l.TaxRate.IsNegative() {
			problems = append(problems, fmt.Sprintf("line %d: negative tax rate", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperr.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func (p CreateParams) build(kind model.ObligationKind) model.Obligation {
	lines := make([]model.ObligationLine, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = model.ObligationLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
		}
	}
	return model.Obligation{
		Number:              p.Number,
		Kind:                kind,
		Counterparty:        p.Counterparty,
		CounterpartyAddress: p.CounterpartyAddress,
		IssueDate:           p.IssueDate,
		DueDate:             p.DueDate,
		Lines:               lines,
		Status:              model.StatusDraft,
		Notes:               p.Notes,
	}
}

// CreateInvoice creates a receivable. The number must be unused.
func (s *Service) CreateInvoice(ctx context.Context, p CreateParams) (model.Obligation, error) {
	return s.create(ctx, model.KindReceivable, p)
}

// CreatePurchaseOrder creates a payable. The number must be unused.
func (s *Service) CreatePurchaseOrder(ctx context.Context, p CreateParams) (model.Obligation, error) {
	return s.create(ctx, model.KindPayable, p)
}

func (s *Service) create(ctx context.Context, kind model.ObligationKind, p CreateParams) (model.Obligation, error) {
	if err := p.validate(); err != nil {
		return model.Obligation{}, err
	}
	o := p.build(kind)
	err := s.atomically(ctx, func(tx store.Tx) error {
		return tx.InsertObligation(o)
	})
	if err != nil {
		return model.Obligation{}, err
	}
	return o, nil
}

// Get returns one obligation by kind and number.
func (s *Service) Get(ctx context.Context, kind model.ObligationKind, number string) (model.Obligation, error) {
	return s.store.Obligation(ctx, kind, number)
}

// List returns all obligations of a kind, optionally filtered by status.
func (s *Service) List(ctx context.Context, kind model.ObligationKind, status model.ObligationStatus) ([]model.Obligation, error) {
	all, err := s.store.Obligations(ctx, kind)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return all, nil
	}
	var out []model.Obligation
	for _, o := range all {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

// Unsettled returns obligations with a positive outstanding balance.
func (s *Service) Unsettled(ctx context.Context, kind model.ObligationKind) ([]model.Obligation, error) {
	all, err := s.store.Obligations(ctx, kind)
	if err != nil {
		return nil, err
	}
	var out []model.Obligation
	for _, o := range all {
		if o.Status == model.StatusCancelled {
			continue
		}
		if o.Outstanding().GreaterThan(decimal.Zero) {
			out = append(out, o)
		}
	}
	return out, nil
}

// Overdue returns unsettled obligations past their due date as of the given
// date.
func (s *Service) Overdue(ctx context.Context, kind model.ObligationKind, asOf time.Time) ([]model.Obligation, error) {
	unsettled, err := s.Unsettled(ctx, kind)
	if err != nil {
		return nil, err
	}
	var out []model.Obligation
	for _, o := range unsettled {
		if o.EffectiveStatus(asOf) == model.StatusOverdue {
			out = append(out, o)
		}
	}
	return out, nil
}

// MarkSent transitions a draft obligation to sent.
func (s *Service) MarkSent(ctx context.Context, kind model.ObligationKind, number string) error {
	return s.atomically(ctx, func(tx store.Tx) error {
		o, err := tx.Obligation(kind, number)
		if err != nil {
			return err
		}
		if o.Status != model.StatusDraft {
			return fmt.Errorf("%w: %s %s is %s, not draft", apperr.ErrValidation, kind, number, o.Status)
		}
		return tx.SetObligationStatus(kind, number, model.StatusSent)
	})
}

// ReceiveItems records a received quantity against one purchase-order line
// and rolls the received state up to the header status.
func (s *Service) ReceiveItems(ctx context.Context, number string, lineIndex int, quantity decimal.Decimal, date time.Time) (model.Obligation, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return model.Obligation{}, fmt.Errorf("%w: received quantity %s is not positive", apperr.ErrValidation, quantity)
	}

	var updated model.Obligation
	err := s.atomically(ctx, func(tx store.Tx) error {
		o, err := tx.Obligation(model.KindPayable, number)
		if err != nil {
			return err
		}
		if lineIndex < 0 || lineIndex >= len(o.Lines) {
			return fmt.Errorf("%w: %s has no line %d", apperr.ErrValidation, number, lineIndex)
		}
		remaining := o.Lines[lineIndex].RemainingQuantity()
		if quantity.GreaterThan(remaining) {
			return fmt.Errorf("%w: cannot receive %s, only %s remaining on line %d",
				apperr.ErrValidation, quantity, remaining, lineIndex)
		}
		if err := tx.ApplyReceipt(number, lineIndex, quantity, date); err != nil {
			return err
		}

		o, err = tx.Obligation(model.KindPayable, number)
		if err != nil {
			return err
		}
		switch {
		case o.FullyReceived():
			err = tx.SetObligationStatus(model.KindPayable, number, model.StatusReceived)
		case o.PartiallyReceived():
			err = tx.SetObligationStatus(model.KindPayable, number, model.StatusPartiallyReceived)
		}
		if err != nil {
			return err
		}

		updated, err = tx.Obligation(model.KindPayable, number)
		return err
	})
	if err != nil {
		return model.Obligation{}, err
	}
	return updated, nil
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
