// Package accounts handles chart-of-accounts setup: loading a chart from
// CSV, providing a default chart, and seeding the store. Accounts are
// append-only reference data; once seeded they are never deleted and their
// balances are moved only by the posting engine.
package accounts

import (
	"context"
	"fmt"
	"os"

	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store"
)

// LoadChart reads a chart-of-accounts CSV from disk.
func LoadChart(path string) ([]model.Account, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	chart, err := ReadChart(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return chart, nil
}

// SaveChart writes a chart-of-accounts CSV to disk.
func SaveChart(path string, chart []model.Account) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteChart(f, chart); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}

// Seed inserts the chart into the store in one unit of work. A duplicate
// code fails the whole seed.
func Seed(ctx context.Context, st store.Store, chart []model.Account) error {
	return st.Atomically(ctx, func(tx store.Tx) error {
		for _, a := range chart {
			if err := tx.InsertAccount(a); err != nil {
				return err
			}
		}
		return nil
	})
}
