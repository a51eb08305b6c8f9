package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledger/internal/model"
)

func TestReadChart(t *testing.T) {
	input := strings.Join([]string{
		"code,name,type",
		"1000,Cash,asset",
		"2000,Accounts Payable,liability",
		"4000,Service Revenue,revenue",
	}, "\n")

	chart, err := ReadChart(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, chart, 3)
	assert.Equal(t, "1000", chart[0].Code)
	assert.Equal(t, model.AccountTypeAsset, chart[0].Type)
	assert.Equal(t, "Accounts Payable", chart[1].Name)
	assert.True(t, chart[0].Balance.IsZero(), "chart accounts start at zero")
}

func TestReadChart_UnknownType(t *testing.T) {
	input := "code,name,type\n1000,Goodwill,intangible\n"
	_, err := ReadChart(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestReadChart_WrongFieldCount(t *testing.T) {
	input := "code,name,type\n1000,Cash\n"
	_, err := ReadChart(strings.NewReader(input))
	require.Error(t, err)
}

func TestReadChart_Empty(t *testing.T) {
	chart, err := ReadChart(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, chart)
}

func TestWriteChart_RoundTrip(t *testing.T) {
	chart := DefaultChart()

	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, chart))

	got, err := ReadChart(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(chart))
	for i := range chart {
		assert.Equal(t, chart[i].Code, got[i].Code)
		assert.Equal(t, chart[i].Name, got[i].Name)
		assert.Equal(t, chart[i].Type, got[i].Type)
	}
}

func TestDefaultChart_TypesValid(t *testing.T) {
	seen := make(map[string]bool)
	for _, a := range DefaultChart() {
		assert.True(t, a.Type.Valid(), "account %s", a.Code)
		assert.False(t, seen[a.Code], "duplicate code %s", a.Code)
		seen[a.Code] = true
	}
}
