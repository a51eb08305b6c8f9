package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/reports"
)

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [balance-sheet|income-statement|trial-balance|cash]",
		Short: "Print a financial statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			snapshot, err := st.Accounts(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch args[0] {
			case "balance-sheet":
				bs := reports.BuildBalanceSheet(snapshot)
				for _, a := range bs.Assets {
					fmt.Fprintf(out, "asset      %-6s %-30s %14s\n", a.Code, a.Name, a.Balance.StringFixed(2))
				}
				for _, l := range bs.Liabilities {
					fmt.Fprintf(out, "liability  %-6s %-30s %14s\n", l.Code, l.Name, l.Balance.StringFixed(2))
				}
				for _, e := range bs.Equity {
					fmt.Fprintf(out, "equity     %-6s %-30s %14s\n", e.Code, e.Name, e.Balance.StringFixed(2))
				}
				fmt.Fprintf(out, "total assets %s, liabilities %s, equity %s\n",
					bs.TotalAssets.StringFixed(2), bs.TotalLiabilities.StringFixed(2), bs.TotalEquity.StringFixed(2))
				if err := reports.CheckAccountingEquation(bs); err != nil {
					return err
				}
			case "income-statement":
				is := reports.BuildIncomeStatement(snapshot)
				for _, r := range is.Revenues {
					fmt.Fprintf(out, "revenue %-6s %-30s %14s\n", r.Code, r.Name, r.Balance.StringFixed(2))
				}
				for _, e := range is.Expenses {
					fmt.Fprintf(out, "expense %-6s %-30s %14s\n", e.Code, e.Name, e.Balance.StringFixed(2))
				}
				fmt.Fprintf(out, "net income %s\n", is.NetIncome.StringFixed(2))
			case "trial-balance":
				tb := reports.BuildTrialBalance(snapshot)
				for _, r := range tb.Rows {
					fmt.Fprintf(out, "%-6s %-30s %14s %14s\n", r.Code, r.Name, r.Debit.StringFixed(2), r.Credit.StringFixed(2))
				}
				fmt.Fprintf(out, "totals %s / %s\n", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
			case "cash":
				cp := reports.BuildCashPosition(snapshot, reports.CashByCodes(cfg.Accounting.CashAccountCodes...))
				for _, a := range cp.Accounts {
					fmt.Fprintf(out, "%-6s %-30s %14s\n", a.Code, a.Name, a.Balance.StringFixed(2))
				}
				fmt.Fprintf(out, "total cash %s\n", cp.TotalCash.StringFixed(2))
			default:
				return fmt.Errorf("unknown report %q", args[0])
			}
			return nil
		},
	}
	return cmd
}
