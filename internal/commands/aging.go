package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/aging"
	"github.com/cleared-dev/ledger/internal/model"
)

func newAgingCommand() *cobra.Command {
	var asOf string
	var kind string

	cmd := &cobra.Command{
		Use:   "aging",
		Short: "Generate an aging schedule for receivables or payables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}

			k, err := model.ParseObligationKind(kind)
			if err != nil {
				return err
			}
			date := time.Now()
			if asOf != "" {
				date, err = time.Parse("2006-01-02", asOf)
				if err != nil {
					return fmt.Errorf("parsing as-of date: %w", err)
				}
			}

			svc := aging.NewService(st, aging.WithMaxAttempts(cfg.Retry.MaxAttempts))
			report, err := svc.Generate(cmd.Context(), date, k)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range report.Entries {
				fmt.Fprintf(out, "%-12s %-25s %14s %4dd %s\n",
					e.ObligationNumber, e.Counterparty, e.CurrentBalance.StringFixed(2), e.DaysOverdue, e.Bucket)
			}
			for _, b := range model.AgingBuckets {
				bt := report.Summary[b]
				fmt.Fprintf(out, "%-14s count=%d amount=%s\n", b, bt.Count, bt.Amount.StringFixed(2))
			}
			fmt.Fprintf(out, "total count=%d amount=%s\n", report.TotalCount, report.TotalAmount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&kind, "kind", "receivable", "receivable or payable")

	return cmd
}
