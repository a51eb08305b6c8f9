package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cleared-dev/ledger/internal/model"
)

const (
	numFields = 3
	colCode   = 0
	colName   = 1
	colType   = 2
)

// ReadChart reads a chart-of-accounts.csv. Balances are not part of the
// chart file; new accounts start at zero and only the posting engine moves
// them.
func ReadChart(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chart CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteChart writes a chart-of-accounts.csv.
func WriteChart(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"code", "name", "type"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	return row
}

// UnmarshalAccount converts a CSV row to an Account, rejecting unknown
// account types.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	accountType, err := model.ParseAccountType(record[colType])
	if err != nil {
		return model.Account{}, err
	}

	return model.Account{
		Code: record[colCode],
		Name: record[colName],
		Type: accountType,
	}, nil
}
