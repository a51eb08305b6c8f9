package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/commands"
	"github.com/cleared-dev/ledger/internal/config"
)

func runLedger(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInit_WritesConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "ledger.yaml")

	out, err := runLedger(t, "init", "--config", configPath, "--name", "My Company", "--driver", "memory")
	require.NoError(t, err)
	assert.Contains(t, out, "initialized ledger")
	assert.Contains(t, out, "12 accounts")

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "My Company", cfg.Business.Name)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "3900", cfg.Accounting.RetainedEarningsCode)
}

func TestInit_CustomChart(t *testing.T) {
	dir := t.TempDir()
	chartPath := filepath.Join(dir, "chart.csv")
	require.NoError(t, os.WriteFile(chartPath, []byte("code,name,type\n1000,Cash,asset\n3000,Equity,equity\n"), 0o644))

	out, err := runLedger(t, "init",
		"--config", filepath.Join(dir, "ledger.yaml"),
		"--name", "Chart Co", "--driver", "memory",
		"--chart", chartPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 accounts")
}

func TestInit_BadChartFails(t *testing.T) {
	dir := t.TempDir()
	chartPath := filepath.Join(dir, "chart.csv")
	require.NoError(t, os.WriteFile(chartPath, []byte("code,name,type\n1000,Goodwill,intangible\n"), 0o644))

	_, err := runLedger(t, "init",
		"--config", filepath.Join(dir, "ledger.yaml"),
		"--name", "Bad Chart Co", "--driver", "memory",
		"--chart", chartPath)
	require.Error(t, err)
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runLedger(t, "init", "--config", filepath.Join(t.TempDir(), "ledger.yaml"))
	require.Error(t, err)
}

func TestCommands_MissingConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := runLedger(t, "report", "balance-sheet", "--config", missing)
	require.Error(t, err)

	_, err = runLedger(t, "post", "--config", missing,
		"--description", "x", "--debit", "1000=10", "--credit", "3000=10")
	require.Error(t, err)
}

func TestReport_UnknownKind(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "ledger.yaml")
	cfg := config.Default("Report Co")
	cfg.Storage.Driver = "memory"
	require.NoError(t, config.Save(configPath, cfg))

	_, err := runLedger(t, "report", "cashflow", "--config", configPath)
	require.Error(t, err)
}
