package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/compliance"
	"github.com/cleared-dev/ledger/internal/logging"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/posting"
)

// parseLine parses "code=amount" into a journal line.
func parseLine(arg string, isDebit bool) (model.JournalLine, error) {
	code, raw, ok := strings.Cut(arg, "=")
	if !ok {
		return model.JournalLine{}, fmt.Errorf("invalid line %q, want code=amount", arg)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.JournalLine{}, fmt.Errorf("parsing amount in %q: %w", arg, err)
	}
	return model.JournalLine{AccountCode: code, Amount: amount, IsDebit: isDebit}, nil
}

func newPostCommand() *cobra.Command {
	var description string
	var debits, credits []string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Post a journal entry",
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

			var lines []model.JournalLine
			for _, d := range debits {
				l, err := parseLine(d, true)
				if err != nil {
					return err
				}
				lines = append(lines, l)
			}
			for _, c := range credits {
				l, err := parseLine(c, false)
				if err != nil {
					return err
				}
				lines = append(lines, l)
			}

			svc := posting.NewService(st, posting.WithMaxAttempts(cfg.Retry.MaxAttempts))
			svc.Subscribe(compliance.NewMaterialityObserver(logging.New(), cfg.Accounting.MaterialityThreshold.Decimal))

			id, err := svc.Post(cmd.Context(), description, lines)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "posted entry %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "entry description (required)")
	_ = cmd.MarkFlagRequired("description")
	cmd.Flags().StringArrayVar(&debits, "debit", nil, "debit line as code=amount (repeatable)")
	cmd.Flags().StringArrayVar(&credits, "credit", nil, "credit line as code=amount (repeatable)")

	return cmd
}
