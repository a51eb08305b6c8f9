package accounts

import "github.com/cleared-dev/ledger/internal/model"

// DefaultChart returns the default chart of accounts for a new ledger.
func DefaultChart() []model.Account {
	return []model.Account{
		{Code: "1000", Name: "Cash", Type: model.AccountTypeAsset},
		{Code: "1100", Name: "Accounts Receivable", Type: model.AccountTypeAsset},
		{Code: "1500", Name: "Equipment", Type: model.AccountTypeAsset},
		{Code: "2000", Name: "Accounts Payable", Type: model.AccountTypeLiability},
		{Code: "2100", Name: "Taxes Payable", Type: model.AccountTypeLiability},
		{Code: "3000", Name: "Owner's Equity", Type: model.AccountTypeEquity},
		{Code: "3900", Name: "Retained Earnings", Type: model.AccountTypeEquity},
		{Code: "4000", Name: "Service Revenue", Type: model.AccountTypeRevenue},
		{Code: "4100", Name: "Product Revenue", Type: model.AccountTypeRevenue},
		{Code: "5000", Name: "Cost of Goods Sold", Type: model.AccountTypeExpense},
		{Code: "5100", Name: "Office Supplies", Type: model.AccountTypeExpense},
		{Code: "5200", Name: "Professional Services", Type: model.AccountTypeExpense},
	}
}
