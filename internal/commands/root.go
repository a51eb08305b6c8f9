// Package commands wires the engines to a thin CLI. No business logic
// lives here; every command builds its services and delegates.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledger",
		Short:   "Double-entry ledger with payment clearing and aging",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "ledger.yaml", "path to the ledger config file")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newInvoiceCommand())
	rootCmd.AddCommand(newPOCommand())
	rootCmd.AddCommand(newPostCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newAgingCommand())
	rootCmd.AddCommand(newClearCommand())

	return rootCmd
}
