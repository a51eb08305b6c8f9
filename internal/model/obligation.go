package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ObligationKind distinguishes the two settlement directions: receivables
// (customer invoices) and payables (supplier purchase orders).
type ObligationKind string

const (
	KindReceivable ObligationKind = "receivable"
	KindPayable    ObligationKind = "payable"
)

// ParseObligationKind validates a raw direction string.
func ParseObligationKind(s string) (ObligationKind, error) {
	switch k := ObligationKind(s); k {
	case KindReceivable, KindPayable:
		return k, nil
	default:
		return "", fmt.Errorf("unknown obligation kind %q", s)
	}
}

// ObligationStatus is the lifecycle state of an invoice or purchase order.
type ObligationStatus string

const (
	StatusDraft             ObligationStatus = "draft"
	StatusSent              ObligationStatus = "sent"
	StatusPaid              ObligationStatus = "paid"
	StatusOverdue           ObligationStatus = "overdue"
	StatusPartiallyReceived ObligationStatus = "partially_received"
	StatusReceived          ObligationStatus = "received"
	StatusCancelled         ObligationStatus = "cancelled"
)

// ParseObligationStatus validates a raw status string.
func ParseObligationStatus(s string) (ObligationStatus, error) {
	switch st := ObligationStatus(s); st {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue,
		StatusPartiallyReceived, StatusReceived, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown obligation status %q", s)
	}
}

// ObligationLine is a single line item on an invoice or purchase order.
// ReceivedQuantity and ReceivedDate are only meaningful for purchase-order
// lines; ReceivedDate holds the most recent receipt.
type ObligationLine struct {
	Description      string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	TaxRate          decimal.Decimal
	ReceivedQuantity decimal.Decimal
	ReceivedDate     *time.Time
}

// Subtotal returns quantity * unit price.
func (l ObligationLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// TaxAmount returns the tax on the line subtotal.
func (l ObligationLine) TaxAmount() decimal.Decimal {
	return l.Subtotal().Mul(l.TaxRate)
}

// Total returns subtotal plus tax.
func (l ObligationLine) Total() decimal.Decimal {
	return l.Subtotal().Add(l.TaxAmount())
}

// ReceivedSubtotal returns received quantity * unit price.
func (l ObligationLine) ReceivedSubtotal() decimal.Decimal {
	return l.ReceivedQuantity.Mul(l.UnitPrice)
}

// ReceivedTotal returns the received subtotal plus its tax share.
func (l ObligationLine) ReceivedTotal() decimal.Decimal {
	return l.ReceivedSubtotal().Add(l.ReceivedSubtotal().Mul(l.TaxRate))
}

// RemainingQuantity returns the quantity not yet received.
func (l ObligationLine) RemainingQuantity() decimal.Decimal {
	return l.Quantity.Sub(l.ReceivedQuantity)
}

// FullyReceived reports whether the line has been received in full.
func (l ObligationLine) FullyReceived() bool {
	return l.ReceivedQuantity.GreaterThanOrEqual(l.Quantity)
}

// Obligation is an invoice (receivable) or purchase order (payable). The two
// are structurally symmetric: a business-assigned number, a counterparty,
// ordered line items, and a running settled amount maintained by the
// clearing engine.
type Obligation struct {
	Number              string
	Kind                ObligationKind
	Counterparty        string
	CounterpartyAddress string
	IssueDate           time.Time
	DueDate             time.Time
	Lines               []ObligationLine
	Status              ObligationStatus
	Notes               string
	SettledAmount       decimal.Decimal
	SettledDate         *time.Time
}

// Subtotal sums the line subtotals.
func (o Obligation) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// TotalTax sums the line tax amounts.
func (o Obligation) TotalTax() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.TaxAmount())
	}
	return total
}

// Total returns subtotal plus tax for the whole obligation.
func (o Obligation) Total() decimal.Decimal {
	return o.Subtotal().Add(o.TotalTax())
}

// Outstanding returns total minus settled amount. The result is signed: an
// over-paid obligation carries a negative outstanding (a credit balance).
func (o Obligation) Outstanding() decimal.Decimal {
	return o.Total().Sub(o.SettledAmount)
}

// Settled reports whether the obligation has no positive outstanding balance.
func (o Obligation) Settled() bool {
	return o.Outstanding().LessThanOrEqual(decimal.Zero)
}

// EffectiveStatus returns the status as of a reference date: an unsettled,
// non-cancelled obligation past its due date reads as overdue. The stored
// status is not mutated; overdue is an evaluation-time view.
func (o Obligation) EffectiveStatus(asOf time.Time) ObligationStatus {
	switch o.Status {
	case StatusPaid, StatusCancelled:
		return o.Status
	}
	if !o.Settled() && o.DueDate.Before(asOf) {
		return StatusOverdue
	}
	return o.Status
}

// ReceivedTotal sums the received totals across lines (payables only).
func (o Obligation) ReceivedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.ReceivedTotal())
	}
	return total
}

// FullyReceived reports whether every line has been received in full.
func (o Obligation) FullyReceived() bool {
	for _, l := range o.Lines {
		if !l.FullyReceived() {
			return false
		}
	}
	return true
}

// PartiallyReceived reports whether some but not all quantity was received.
func (o Obligation) PartiallyReceived() bool {
	if o.FullyReceived() {
		return false
	}
	for _, l := range o.Lines {
		if l.ReceivedQuantity.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}
