package gormstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

type accountRow struct {
	Code      string          `gorm:"primaryKey;size:32"`
	Name      string          `gorm:"size:255;not null"`
	Type      string          `gorm:"size:16;not null"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (accountRow) TableName() string { return "accounts" }

type entryRow struct {
	ID          int64          `gorm:"primaryKey;autoIncrement"`
	Description string         `gorm:"type:text"`
	Timestamp   time.Time      `gorm:"index;not null"`
	Lines       []entryLineRow `gorm:"foreignKey:EntryID"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
}

func (entryRow) TableName() string { return "journal_entries" }

type entryLineRow struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	EntryID     int64           `gorm:"index;not null"`
	Position    int             `gorm:"not null"`
	AccountCode string          `gorm:"size:32;index;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	IsDebit     bool            `gorm:"not null"`
}

func (entryLineRow) TableName() string { return "journal_lines" }

type obligationRow struct {
	ID                  int64               `gorm:"primaryKey;autoIncrement"`
	Kind                string              `gorm:"size:16;not null;uniqueIndex:idx_obligation_key,priority:1"`
	Number              string              `gorm:"size:64;not null;uniqueIndex:idx_obligation_key,priority:2"`
	Counterparty        string              `gorm:"size:255;not null"`
	CounterpartyAddress string              `gorm:"type:text"`
	IssueDate           time.Time           `gorm:"index;not null"`
	DueDate             time.Time           `gorm:"index;not null"`
	Status              string              `gorm:"size:32;index;not null"`
	Notes               string              `gorm:"type:text"`
	SettledAmount       decimal.Decimal     `gorm:"type:decimal(20,4);not null"`
	SettledDate         *time.Time          ``
	Lines               []obligationLineRow `gorm:"foreignKey:ObligationID"`
	CreatedAt           time.Time           `gorm:"autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"autoUpdateTime"`
}

func (obligationRow) TableName() string { return "obligations" }

type obligationLineRow struct {
	ID               int64           `gorm:"primaryKey;autoIncrement"`
	ObligationID     int64           `gorm:"index;not null"`
	Position         int             `gorm:"not null"`
	Description      string          `gorm:"size:255"`
	Quantity         decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	TaxRate          decimal.Decimal `gorm:"type:decimal(10,6);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	ReceivedDate     *time.Time      ``
}

func (obligationLineRow) TableName() string { return "obligation_lines" }

type clearingRow struct {
	ID               string          `gorm:"primaryKey;size:36"`
	ClearingDate     time.Time       `gorm:"index;not null"`
	Kind             string          `gorm:"size:16;index;not null"`
	Reference        string          `gorm:"size:255;not null"`
	ObligationNumber string          `gorm:"size:64;index;not null"`
	Counterparty     string          `gorm:"size:255"`
	OriginalAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	ClearedAmount    decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	RemainingAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Method           string          `gorm:"size:16;not null"`
	CreatedAt        time.Time       `gorm:"autoCreateTime"`
}

func (clearingRow) TableName() string { return "clearing_records" }

type agingRow struct {
	ID               int64           `gorm:"primaryKey;autoIncrement"`
	GenerationID     string          `gorm:"size:36;index;not null"`
	ScheduleDate     time.Time       `gorm:"index:idx_aging_run,priority:1;not null"`
	Kind             string          `gorm:"size:16;index:idx_aging_run,priority:2;not null"`
	Counterparty     string          `gorm:"size:255"`
	ObligationNumber string          `gorm:"size:64;not null"`
	OriginalAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	CurrentBalance   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	DaysOverdue      int             `gorm:"not null"`
	Bucket           string          `gorm:"size:16;not null"`
	CreatedAt        time.Time       `gorm:"autoCreateTime"`
}

func (agingRow) TableName() string { return "aging_entries" }

func toAccount(r accountRow) model.Account {
	return model.Account{Code: r.Code, Name: r.Name, Type: model.AccountType(r.Type), Balance: r.Balance}
}

func toEntry(r entryRow) model.JournalEntry {
	e := model.JournalEntry{ID: r.ID, Description: r.Description, Timestamp: r.Timestamp}
	for _, l := range r.Lines {
		e.Lines = append(e.Lines, model.JournalLine{AccountCode: l.AccountCode, Amount: l.Amount, IsDebit: l.IsDebit})
	}
	return e
}

func toObligation(r obligationRow) model.Obligation {
	o := model.Obligation{
		Number:              r.Number,
		Kind:                model.ObligationKind(r.Kind),
		Counterparty:        r.Counterparty,
		CounterpartyAddress: r.CounterpartyAddress,
		IssueDate:           r.IssueDate,
		DueDate:             r.DueDate,
		Status:              model.ObligationStatus(r.Status),
		Notes:               r.Notes,
		SettledAmount:       r.SettledAmount,
		SettledDate:         r.SettledDate,
	}
	for _, l := range r.Lines {
		o.Lines = append(o.Lines, model.ObligationLine{
			Description:      l.Description,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			TaxRate:          l.TaxRate,
			ReceivedQuantity: l.ReceivedQuantity,
			ReceivedDate:     l.ReceivedDate,
		})
	}
	return o
}

func fromObligation(o model.Obligation) obligationRow {
	r := obligationRow{
		Kind:                string(o.Kind),
		Number:              o.Number,
		Counterparty:        o.Counterparty,
		CounterpartyAddress: o.CounterpartyAddress,
		IssueDate:           o.IssueDate,
		DueDate:             o.DueDate,
		Status:              string(o.Status),
		Notes:               o.Notes,
		SettledAmount:       o.SettledAmount,
		SettledDate:         o.SettledDate,
	}
	for i, l := range o.Lines {
		r.Lines = append(r.Lines, obligationLineRow{
			Position:         i,
			Description:      l.Description,
			Quantity:         l.Quantity,
			UnitPrice:        l.UnitPrice,
			TaxRate:          l.TaxRate,
			ReceivedQuantity: l.ReceivedQuantity,
			ReceivedDate:     l.ReceivedDate,
		})
	}
	return r
}

func toClearingRecord(r clearingRow) model.ClearingRecord {
	return model.ClearingRecord{
		ID:               r.ID,
		ClearingDate:     r.ClearingDate,
		Kind:             model.ObligationKind(r.Kind),
		Reference:        r.Reference,
		ObligationNumber: r.ObligationNumber,
		Counterparty:     r.Counterparty,
		OriginalAmount:   r.OriginalAmount,
		ClearedAmount:    r.ClearedAmount,
		RemainingAmount:  r.RemainingAmount,
		Method:           model.ClearingMethod(r.Method),
	}
}

func toAgingEntry(r agingRow) model.AgingEntry {
	return model.AgingEntry{
		GenerationID:     r.GenerationID,
		ScheduleDate:     r.ScheduleDate,
		Kind:             model.ObligationKind(r.Kind),
		Counterparty:     r.Counterparty,
		ObligationNumber: r.ObligationNumber,
		OriginalAmount:   r.OriginalAmount,
		CurrentBalance:   r.CurrentBalance,
		DaysOverdue:      r.DaysOverdue,
		Bucket:           model.AgingBucket(r.Bucket),
	}
}
