// Package gormstore is the MySQL store adapter. Each Atomically call maps
// to one database transaction, and balance/settlement mutations are issued
// as single conditional UPDATE statements so concurrent units of work never
// race a read-then-write window. Deadlocks and lock timeouts surface as
// apperr.ErrConflict for the engines to retry.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cleared-dev/ledger/internal/apperr"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// Store is the MySQL adapter.
type Store struct {
	db *gorm.DB
}

// Open connects to MySQL, migrates the schema, and returns the adapter.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := db.AutoMigrate(
		&accountRow{}, &entryRow{}, &entryLineRow{},
		&obligationRow{}, &obligationLineRow{},
		&clearingRow{}, &agingRow{},
	); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &Store{db: db}, nil
}

var _ store.Store = (*Store)(nil)

// translate maps driver and gorm errors onto the shared taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%v: %w", err, apperr.ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%v: %w", err, apperr.ErrDuplicate)
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1213, 1205: // deadlock, lock wait timeout
			return fmt.Errorf("%v: %w", err, apperr.ErrConflict)
		}
	}
	return err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Accounts returns all accounts ordered by code.
func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	var rows []accountRow
	if err := s.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	out := make([]model.Account, len(rows))
	for i, r := range rows {
		out[i] = toAccount(r)
	}
	return out, nil
}

// Account returns one account by code.
func (s *Store) Account(ctx context.Context, code string) (model.Account, error) {
	var row accountRow
	if err := s.db.WithContext(ctx).First(&row, "code = ?", code).Error; err != nil {
		return model.Account{}, fmt.Errorf("account %s: %w", code, translate(err))
	}
	return toAccount(row), nil
}

// Entries returns all journal entries with their lines, ordered by id.
func (s *Store) Entries(ctx context.Context) ([]model.JournalEntry, error) {
	var rows []entryRow
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("id").Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]model.JournalEntry, len(rows))
	for i, r := range rows {
		out[i] = toEntry(r)
	}
	return out, nil
}

// Entry returns one journal entry by id.
func (s *Store) Entry(ctx context.Context, id int64) (model.JournalEntry, error) {
	var row entryRow
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&row, "id = ?", id).Error
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("journal entry %d: %w", id, translate(err))
	}
	return toEntry(row), nil
}

// Obligations returns all obligations of a kind ordered by number.
func (s *Store) Obligations(ctx context.Context, kind model.ObligationKind) ([]model.Obligation, error) {
	var rows []obligationRow
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("kind = ?", string(kind)).Order("number").Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]model.Obligation, len(rows))
	for i, r := range rows {
		out[i] = toObligation(r)
	}
	return out, nil
}

// Obligation returns one obligation by kind and number.
func (s *Store) Obligation(ctx context.Context, kind model.ObligationKind, number string) (model.Obligation, error) {
	var row obligationRow
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&row, "kind = ? AND number = ?", string(kind), number).Error
	if err != nil {
		return model.Obligation{}, fmt.Errorf("%s %s: %w", kind, number, translate(err))
	}
	return toObligation(row), nil
}

// ClearingRecords returns all clearing records of a kind in insert order.
func (s *Store) ClearingRecords(ctx context.Context, kind model.ObligationKind) ([]model.ClearingRecord, error) {
	var rows []clearingRow
	err := s.db.WithContext(ctx).Where("kind = ?", string(kind)).Order("created_at, id").Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]model.ClearingRecord, len(rows))
	for i, r := range rows {
		out[i] = toClearingRecord(r)
	}
	return out, nil
}

// AgingEntries returns the persisted aging generation for a date and kind.
func (s *Store) AgingEntries(ctx context.Context, date time.Time, kind model.ObligationKind) ([]model.AgingEntry, error) {
	var rows []agingRow
	err := s.db.WithContext(ctx).
		Where("schedule_date = ? AND kind = ?", startOfDay(date), string(kind)).
		Order("obligation_number").Find(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	out := make([]model.AgingEntry, len(rows))
	for i, r := range rows {
		out[i] = toAgingEntry(r)
	}
	return out, nil
}

// Atomically runs fn in one database transaction.
func (s *Store) Atomically(ctx context.Context, fn func(store.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&tx{db: db})
	})
	return translate(err)
}

type tx struct {
	db *gorm.DB
}

var _ store.Tx = (*tx)(nil)

func (t *tx) InsertAccount(a model.Account) error {
	if !a.Type.Valid() {
		return fmt.Errorf("%w: account %s has invalid type %q", apperr.ErrValidation, a.Code, a.Type)
	}
	row := accountRow{Code: a.Code, Name: a.Name, Type: string(a.Type), Balance: a.Balance}
	if err := t.db.Create(&row).Error; err != nil {
		return fmt.Errorf("account %s: %w", a.Code, translate(err))
	}
	return nil
}

func (t *tx) Account(code string) (model.Account, error) {
	var row accountRow
	if err := t.db.First(&row, "code = ?", code).Error; err != nil {
		return model.Account{}, fmt.Errorf("account %s: %w", code, translate(err))
	}
	return toAccount(row), nil
}

func (t *tx) AddToBalance(code string, delta decimal.Decimal) error {
	res := t.db.Model(&accountRow{}).Where("code = ?", code).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("account %s: %w", code, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %s: %w", code, apperr.ErrNotFound)
	}
	return nil
}

func (t *tx) InsertEntry(e *model.JournalEntry) error {
	row := entryRow{Description: e.Description, Timestamp: e.Timestamp}
	for i, l := range e.Lines {
		row.Lines = append(row.Lines, entryLineRow{
			Position:    i,
			AccountCode: l.AccountCode,
			Amount:      l.Amount,
			IsDebit:     l.IsDebit,
		})
	}
	if err := t.db.Create(&row).Error; err != nil {
		return translate(err)
	}
	e.ID = row.ID
	return nil
}

func (t *tx) InsertObligation(o model.Obligation) error {
	if _, err := model.ParseObligationKind(string(o.Kind)); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if _, err := model.ParseObligationStatus(string(o.Status)); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	row := fromObligation(o)
	if err := t.db.Create(&row).Error; err != nil {
		return fmt.Errorf("%s %s: %w", o.Kind, o.Number, translate(err))
	}
	return nil
}

func (t *tx) Obligation(kind model.ObligationKind, number string) (model.Obligation, error) {
	var row obligationRow
	err := t.db.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&row, "kind = ? AND number = ?", string(kind), number).Error
	if err != nil {
		return model.Obligation{}, fmt.Errorf("%s %s: %w", kind, number, translate(err))
	}
	return toObligation(row), nil
}

func (t *tx) AddToSettled(kind model.ObligationKind, number string, amount decimal.Decimal, date time.Time) error {
	res := t.db.Model(&obligationRow{}).
		Where("kind = ? AND number = ?", string(kind), number).
		UpdateColumns(map[string]any{
			"settled_amount": gorm.Expr("settled_amount + ?", amount),
			"settled_date":   date,
		})
	if res.Error != nil {
		return fmt.Errorf("%s %s: %w", kind, number, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", kind, number, apperr.ErrNotFound)
	}
	return nil
}

func (t *tx) SetObligationStatus(kind model.ObligationKind, number string, status model.ObligationStatus) error {
	if _, err := model.ParseObligationStatus(string(status)); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	var row obligationRow
	if err := t.db.Select("id").First(&row, "kind = ? AND number = ?", string(kind), number).Error; err != nil {
		return fmt.Errorf("%s %s: %w", kind, number, translate(err))
	}
	if err := t.db.Model(&obligationRow{ID: row.ID}).Update("status", string(status)).Error; err != nil {
		return fmt.Errorf("%s %s: %w", kind, number, translate(err))
	}
	return nil
}

func (t *tx) ApplyReceipt(number string, lineIndex int, quantity decimal.Decimal, date time.Time) error {
	var row obligationRow
	if err := t.db.Select("id").First(&row, "kind = ? AND number = ?", string(model.KindPayable), number).Error; err != nil {
		return fmt.Errorf("%s %s: %w", model.KindPayable, number, translate(err))
	}
	res := t.db.Model(&obligationLineRow{}).
		Where("obligation_id = ? AND position = ?", row.ID, lineIndex).
		UpdateColumns(map[string]any{
			"received_quantity": gorm.Expr("received_quantity + ?", quantity),
			"received_date":     date,
		})
	if res.Error != nil {
		return fmt.Errorf("%s line %d: %w", number, lineIndex, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s line %d: %w", number, lineIndex, apperr.ErrNotFound)
	}
	return nil
}

func (t *tx) InsertClearingRecord(r *model.ClearingRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	row := clearingRow{
		ID:               r.ID,
		ClearingDate:     r.ClearingDate,
		Kind:             string(r.Kind),
		Reference:        r.Reference,
		ObligationNumber: r.ObligationNumber,
		Counterparty:     r.Counterparty,
		OriginalAmount:   r.OriginalAmount,
		ClearedAmount:    r.ClearedAmount,
		RemainingAmount:  r.RemainingAmount,
		Method:           string(r.Method),
	}
	if err := t.db.Create(&row).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (t *tx) ReplaceAging(date time.Time, kind model.ObligationKind, entries []model.AgingEntry) error {
	day := startOfDay(date)
	err := t.db.Where("schedule_date = ? AND kind = ?", day, string(kind)).Delete(&agingRow{}).Error
	if err != nil {
		return translate(err)
	}
	if len(entries) == 0 {
		return nil
	}
	rows := make([]agingRow, len(entries))
	for i, e := range entries {
		rows[i] = agingRow{
			GenerationID:     e.GenerationID,
			ScheduleDate:     day,
			Kind:             string(e.Kind),
			Counterparty:     e.Counterparty,
			ObligationNumber: e.ObligationNumber,
			OriginalAmount:   e.OriginalAmount,
			CurrentBalance:   e.CurrentBalance,
			DaysOverdue:      e.DaysOverdue,
			Bucket:           string(e.Bucket),
		}
	}
	return translate(t.db.Create(&rows).Error)
}
