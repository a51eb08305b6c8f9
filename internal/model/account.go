package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// ParseAccountType validates a raw string against the closed set of account
// types. Unknown values are rejected at the store boundary rather than stored.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// Valid reports whether the account type is one of the known variants.
func (t AccountType) Valid() bool {
	_, err := ParseAccountType(string(t))
	return err == nil
}

// DebitIncreases reports whether a debit increases the balance of an account
// of this type. Asset and expense accounts carry a debit-normal balance;
// liability, equity and revenue accounts carry a credit-normal balance.
func (t AccountType) DebitIncreases() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// SignedDelta returns the balance effect of a line amount posted against an
// account of this type. Amount must be positive; the sign comes from the
// debit/credit flag and the account's normal balance side.
func (t AccountType) SignedDelta(amount decimal.Decimal, isDebit bool) decimal.Decimal {
	if isDebit == t.DebitIncreases() {
		return amount
	}
	return amount.Neg()
}

// Account represents an entry in the chart of accounts with its running
// balance. Accounts are created once via chart setup and mutated only by the
// posting engine; they are never deleted.
type Account struct {
	Code    string
	Name    string
	Type    AccountType
	Balance decimal.Decimal
}
