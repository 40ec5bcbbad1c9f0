package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"aapl", "AAPL"},
		{"  msft ", "MSFT"},
		{"BRK.B", "BRK.B"},
		{"bf-b", "BF-B"},
		{"BAC-PL", "BAC-PL"},
		{"", ""},
		{"   ", ""},
		{"NOT A TICKER", ""},
		{"TOOLONGSYMBOL", ""},
		{".AAPL", ""},
		{"AAPL-", ""},
		{"aa_pl", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeSymbol(tc.in), "input %q", tc.in)
	}
}

func TestIsValidSymbol(t *testing.T) {
	assert.True(t, IsValidSymbol("A"))
	assert.True(t, IsValidSymbol("GOOG"))
	assert.True(t, IsValidSymbol("BRK.B"))
	assert.False(t, IsValidSymbol("goog"), "validation expects canonical case")
	assert.False(t, IsValidSymbol(""))
	assert.False(t, IsValidSymbol("A B"))
}

func TestNormalizeSymbolsDedupesAndPreservesOrder(t *testing.T) {
	got := NormalizeSymbols([]string{"aapl", "MSFT", "AAPL", "junk!", "", "msft", "NVDA"})
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, got)
}

func TestNormalizeSymbolsEmptyInput(t *testing.T) {
	assert.Empty(t, NormalizeSymbols(nil))
}
