// Package reports derives financial statements from an account snapshot.
// Every function here is a pure projection: it reads balances and computes,
// with no side effects and no store access. A report reflects whatever
// committed state the snapshot was taken from.
package reports

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// EquationTolerance is the absolute tolerance used when comparing aggregated
// report totals, e.g. the accounting equation check.
var EquationTolerance = decimal.New(1, -2)

// AccountBalance is one account's contribution to a statement section.
type AccountBalance struct {
	Code    string
	Name    string
	Balance decimal.Decimal
}

// BalanceSheet groups asset, liability and equity balances.
type BalanceSheet struct {
	Assets           []AccountBalance
	Liabilities      []AccountBalance
	Equity           []AccountBalance
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
}

// IncomeStatement groups revenue and expense balances. NetIncome reflects
// the period since the last closing entry: revenue and expense accounts are
// never zeroed automatically.
type IncomeStatement struct {
	Revenues      []AccountBalance
	Expenses      []AccountBalance
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	NetIncome     decimal.Decimal
}

// CashPosition sums the balances of accounts the caller classifies as
// cash-equivalent.
type CashPosition struct {
	Accounts  []AccountBalance
	TotalCash decimal.Decimal
}

// TrialBalanceRow lists one account with its balance placed on its natural
// side.
type TrialBalanceRow struct {
	Code   string
	Name   string
	Type   model.AccountType
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// TrialBalance lists every account with debit/credit column totals.
type TrialBalance struct {
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func balancesOf(accounts []model.Account, t model.AccountType) ([]AccountBalance, decimal.Decimal) {
	var out []AccountBalance
	total := decimal.Zero
	for _, a := range accounts {
		if a.Type != t {
			continue
		}
		out = append(out, AccountBalance{Code: a.Code, Name: a.Name, Balance: a.Balance})
		total = total.Add(a.Balance)
	}
	return out, total
}

// BuildBalanceSheet groups the snapshot's balances by type. It does not
// verify the accounting equation; use CheckAccountingEquation for that.
func BuildBalanceSheet(accounts []model.Account) BalanceSheet {
	var bs BalanceSheet
	bs.Assets, bs.TotalAssets = balancesOf(accounts, model.AccountTypeAsset)
	bs.Liabilities, bs.TotalLiabilities = balancesOf(accounts, model.AccountTypeLiability)
	bs.Equity, bs.TotalEquity = balancesOf(accounts, model.AccountTypeEquity)
	return bs
}

// CheckAccountingEquation verifies assets == liabilities + equity within
// EquationTolerance. A violation means an upstream posting bug; it is
// surfaced as an error, never corrected.
func CheckAccountingEquation(bs BalanceSheet) error {
	diff := bs.TotalAssets.Sub(bs.TotalLiabilities.Add(bs.TotalEquity))
	if diff.Abs().GreaterThan(EquationTolerance) {
		return fmt.Errorf("accounting equation violated: assets %s != liabilities %s + equity %s (off by %s)",
			bs.TotalAssets.StringFixed(2), bs.TotalLiabilities.StringFixed(2),
			bs.TotalEquity.StringFixed(2), diff.StringFixed(2))
	}
	return nil
}

// BuildIncomeStatement groups revenue and expense balances and computes net
// income as revenue minus expenses.
func BuildIncomeStatement(accounts []model.Account) IncomeStatement {
	var is IncomeStatement
	is.Revenues, is.TotalRevenue = balancesOf(accounts, model.AccountTypeRevenue)
	is.Expenses, is.TotalExpenses = balancesOf(accounts, model.AccountTypeExpense)
	is.NetIncome = is.TotalRevenue.Sub(is.TotalExpenses)
	return is
}

// BuildCashPosition sums the balances of accounts matching the caller's
// cash-equivalent predicate. Classification is the caller's, not a name
// match.
func BuildCashPosition(accounts []model.Account, isCash func(model.Account) bool) CashPosition {
	var cp CashPosition
	cp.TotalCash = decimal.Zero
	for _, a := range accounts {
		if !isCash(a) {
			continue
		}
		cp.Accounts = append(cp.Accounts, AccountBalance{Code: a.Code, Name: a.Name, Balance: a.Balance})
		cp.TotalCash = cp.TotalCash.Add(a.Balance)
	}
	return cp
}

// CashByCodes returns a predicate matching a fixed set of account codes,
// the usual way callers tag their cash-equivalent accounts.
func CashByCodes(codes ...string) func(model.Account) bool {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return func(a model.Account) bool {
		_, ok := set[a.Code]
		return ok
	}
}

// BuildTrialBalance lists every account with its balance on its natural
// side. Negative balances flip to the opposite column.
func BuildTrialBalance(accounts []model.Account) TrialBalance {
	tb := TrialBalance{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, a := range accounts {
		row := TrialBalanceRow{Code: a.Code, Name: a.Name, Type: a.Type}
		debitSide := a.Type.DebitIncreases()
		if a.Balance.IsNegative() {
			debitSide = !debitSide
		}
		if debitSide {
			row.Debit = a.Balance.Abs()
		} else {
			row.Credit = a.Balance.Abs()
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	return tb
}
