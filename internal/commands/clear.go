package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/clearing"
	"github.com/cleared-dev/ledger/internal/model"
)

func newClearCommand() *cobra.Command {
	var kind, number, amountRaw, dateRaw, reference, method, strategy string
	var numbers []string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Apply a payment against one or more obligations",
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
			amount, err := decimal.NewFromString(amountRaw)
			if err != nil {
				return fmt.Errorf("parsing amount: %w", err)
			}
			date := time.Now()
			if dateRaw != "" {
				date, err = time.Parse("2006-01-02", dateRaw)
				if err != nil {
					return fmt.Errorf("parsing date: %w", err)
				}
			}

			svc := clearing.NewService(st, clearing.WithMaxAttempts(cfg.Retry.MaxAttempts))
			out := cmd.OutOrStdout()

			if len(numbers) > 0 {
				strat, err := model.ParseAllocationStrategy(strategy)
				if err != nil {
					return err
				}
				result, err := svc.ClearMany(cmd.Context(), k, numbers, amount, date, reference, strat)
				if err != nil {
					return err
				}
				for _, a := range result.Allocations {
					fmt.Fprintf(out, "%-12s allocated %s\n", a.Number, a.Amount.StringFixed(2))
				}
				return nil
			}

			if number == "" {
				return fmt.Errorf("either --number or --numbers is required")
			}
			m, err := model.ParseClearingMethod(method)
			if err != nil {
				return err
			}
			result, err := svc.ClearOne(cmd.Context(), k, number, amount, date, reference, m)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s cleared %s, remaining %s\n",
				number, result.Record.ClearedAmount.StringFixed(2), result.Record.RemainingAmount.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "receivable", "receivable or payable")
	cmd.Flags().StringVar(&number, "number", "", "obligation number for a single clearing")
	cmd.Flags().StringSliceVar(&numbers, "numbers", nil, "obligation numbers for a distributed clearing")
	cmd.Flags().StringVar(&amountRaw, "amount", "", "payment amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&dateRaw, "date", "", "payment date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&reference, "reference", "", "payment reference")
	cmd.Flags().StringVar(&method, "method", "partial", "full or partial (single clearing)")
	cmd.Flags().StringVar(&strategy, "strategy", "proportional", "proportional, oldest_first or largest_first")

	return cmd
}
