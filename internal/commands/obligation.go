package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/obligation"
)

// parseObligationLine parses "description:qty:unit-price[:tax-rate]".
func parseObligationLine(arg string) (obligation.LineParams, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return obligation.LineParams{}, fmt.Errorf("invalid line %q, want description:qty:price[:tax]", arg)
	}
	quantity, err := decimal.NewFromString(parts[1])
	if err != nil {
		return obligation.LineParams{}, fmt.Errorf("parsing quantity in %q: %w", arg, err)
	}
	price, err := decimal.NewFromString(parts[2])
	if err != nil {
		return obligation.LineParams{}, fmt.Errorf("parsing unit price in %q: %w", arg, err)
	}
	tax := decimal.Zero
	if len(parts) == 4 {
		tax, err = decimal.NewFromString(parts[3])
		if err != nil {
			return obligation.LineParams{}, fmt.Errorf("parsing tax rate in %q: %w", arg, err)
		}
	}
	return obligation.LineParams{
		Description: parts[0],
		Quantity:    quantity,
		UnitPrice:   price,
		TaxRate:     tax,
	}, nil
}

func obligationService(cmd *cobra.Command) (*obligation.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return obligation.NewService(st, obligation.WithMaxAttempts(cfg.Retry.MaxAttempts)), nil
}

func newObligationCreateCommand(kind model.ObligationKind, noun, short string) *cobra.Command {
	var number, counterparty, address, issueRaw, dueRaw, notes string
	var lineArgs []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := obligationService(cmd)
			if err != nil {
				return err
			}

			issued := time.Now()
			if issueRaw != "" {
				issued, err = time.Parse("2006-01-02", issueRaw)
				if err != nil {
					return fmt.Errorf("parsing issue date: %w", err)
				}
			}
			due, err := time.Parse("2006-01-02", dueRaw)
			if err != nil {
				return fmt.Errorf("parsing due date: %w", err)
			}

			var lines []obligation.LineParams
			for _, arg := range lineArgs {
				l, err := parseObligationLine(arg)
				if err != nil {
					return err
				}
				lines = append(lines, l)
			}

			p := obligation.CreateParams{
				Number:              number,
				Counterparty:        counterparty,
				CounterpartyAddress: address,
				IssueDate:           issued,
				DueDate:             due,
				Lines:               lines,
				Notes:               notes,
			}
			var created model.Obligation
			if kind == model.KindReceivable {
				created, err = svc.CreateInvoice(cmd.Context(), p)
			} else {
				created, err = svc.CreatePurchaseOrder(cmd.Context(), p)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s, total %s due %s\n",
				created.Number, created.Total().StringFixed(2), created.DueDate.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVar(&number, "number", "", fmt.Sprintf("%s number (required)", noun))
	_ = cmd.MarkFlagRequired("number")
	cmd.Flags().StringVar(&counterparty, "counterparty", "", "counterparty name (required)")
	_ = cmd.MarkFlagRequired("counterparty")
	cmd.Flags().StringVar(&address, "address", "", "counterparty address")
	cmd.Flags().StringVar(&issueRaw, "issue-date", "", "issue date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&dueRaw, "due-date", "", "due date YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("due-date")
	cmd.Flags().StringArrayVar(&lineArgs, "line", nil, "line as description:qty:price[:tax] (repeatable)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")

	return cmd
}

func newObligationListCommand(kind model.ObligationKind, noun string) *cobra.Command {
	var statusRaw string

	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %ss", noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := obligationService(cmd)
			if err != nil {
				return err
			}

			var status model.ObligationStatus
			if statusRaw != "" {
				status, err = model.ParseObligationStatus(statusRaw)
				if err != nil {
					return err
				}
			}
			items, err := svc.List(cmd.Context(), kind, status)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, o := range items {
				fmt.Fprintf(out, "%-16s %-24s %10s %10s %s\n",
					o.Number, o.Counterparty, o.Total().StringFixed(2), o.Outstanding().StringFixed(2), o.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&statusRaw, "status", "", "filter by status")

	return cmd
}

func newInvoiceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Manage receivable invoices",
	}

	send := &cobra.Command{
		Use:   "send",
		Short: "Mark a draft invoice as sent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			number, _ := cmd.Flags().GetString("number")
			svc, err := obligationService(cmd)
			if err != nil {
				return err
			}
			if err := svc.MarkSent(cmd.Context(), model.KindReceivable, number); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s marked sent\n", number)
			return nil
		},
	}
	send.Flags().String("number", "", "invoice number (required)")
	_ = send.MarkFlagRequired("number")

	cmd.AddCommand(newObligationCreateCommand(model.KindReceivable, "invoice", "Create an invoice"))
	cmd.AddCommand(newObligationListCommand(model.KindReceivable, "invoice"))
	cmd.AddCommand(send)

	return cmd
}

func newPOCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "po",
		Short: "Manage payable purchase orders",
	}

	var quantityRaw, dateRaw string
	var lineIndex int
	receive := &cobra.Command{
		Use:   "receive",
		Short: "Record items received against a purchase order line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			number, _ := cmd.Flags().GetString("number")
			svc, err := obligationService(cmd)
			if err != nil {
				return err
			}

			quantity, err := decimal.NewFromString(quantityRaw)
			if err != nil {
				return fmt.Errorf("parsing quantity: %w", err)
			}
			date := time.Now()
			if dateRaw != "" {
				date, err = time.Parse("2006-01-02", dateRaw)
				if err != nil {
					return fmt.Errorf("parsing date: %w", err)
				}
			}

			updated, err := svc.ReceiveItems(cmd.Context(), number, lineIndex, quantity, date)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s line %d received %s, status %s\n",
				updated.Number, lineIndex, quantity.String(), updated.Status)
			return nil
		},
	}
	receive.Flags().String("number", "", "purchase order number (required)")
	_ = receive.MarkFlagRequired("number")
	receive.Flags().IntVar(&lineIndex, "item", 0, "zero-based line index")
	receive.Flags().StringVar(&quantityRaw, "quantity", "", "quantity received (required)")
	_ = receive.MarkFlagRequired("quantity")
	receive.Flags().StringVar(&dateRaw, "date", "", "receipt date YYYY-MM-DD (default today)")

	cmd.AddCommand(newObligationCreateCommand(model.KindPayable, "purchase order", "Create a purchase order"))
	cmd.AddCommand(newObligationListCommand(model.KindPayable, "purchase order"))
	cmd.AddCommand(receive)

	return cmd
}
