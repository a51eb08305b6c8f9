package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	l, err := parseLine("1000=250.50", true)
	require.NoError(t, err)
	assert.Equal(t, "1000", l.AccountCode)
	assert.True(t, l.Amount.StringFixed(2) == "250.50")
	assert.True(t, l.IsDebit)

	l, err = parseLine("4000=99", false)
	require.NoError(t, err)
	assert.False(t, l.IsDebit)

	_, err = parseLine("1000", true)
	require.Error(t, err)

	_, err = parseLine("1000=ten", true)
	require.Error(t, err)
}
