package accounts

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/apperr"
	"github.com/cleared-dev/ledger/internal/model"
	"github.com/cleared-dev/ledger/internal/store/memstore"
)

func TestSaveAndLoadChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart-of-accounts.csv")

	require.NoError(t, SaveChart(path, DefaultChart()))

	chart, err := LoadChart(path)
	require.NoError(t, err)
	assert.Len(t, chart, len(DefaultChart()))
}

func TestLoadChart_MissingFile(t *testing.T) {
	_, err := LoadChart(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestSeed(t *testing.T) {
	st := memstore.New()
	ctx := context.Background()

	require.NoError(t, Seed(ctx, st, DefaultChart()))

	all, err := st.Accounts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultChart()))
}

func TestSeed_DuplicateFailsWholeSeed(t *testing.T) {
	st := memstore.New()
	ctx := context.Background()

	chart := []model.Account{
		{Code: "1000", Name: "Cash", Type: model.AccountTypeAsset},
		{Code: "1000", Name: "Cash again", Type: model.AccountTypeAsset},
	}
	err := Seed(ctx, st, chart)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	all, err := st.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "nothing seeded on failure")
}
