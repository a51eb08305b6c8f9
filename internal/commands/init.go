package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledger/internal/accounts"
	"github.com/cleared-dev/ledger/internal/config"
	"github.com/cleared-dev/ledger/internal/model"
)

func newInitCommand() *cobra.Command {
	var name string
	var chartPath string
	var driver string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file and seed the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}

			cfg := config.Default(name)
			if driver != "" {
				cfg.Storage.Driver = driver
			}
			if err := config.Save(configPath, cfg); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			var chart []model.Account
			if chartPath != "" {
				chart, err = accounts.LoadChart(chartPath)
				if err != nil {
					return err
				}
			} else {
				chart = accounts.DefaultChart()
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			if err := accounts.Seed(cmd.Context(), st, chart); err != nil {
				return fmt.Errorf("seeding chart of accounts: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized ledger %q with %d accounts\n", name, len(chart))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&chartPath, "chart", "", "chart-of-accounts CSV (default chart if omitted)")
	cmd.Flags().StringVar(&driver, "driver", "", "storage driver, mysql or memory (default mysql)")

	return cmd
}
