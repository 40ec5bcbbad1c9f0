// Package common provides shared utilities across the application.
package common

import (
	"strings"
)

// symbolMaxLen bounds accepted ticker symbols; the longest real-world
// symbols (class shares like BRK.B, preferreds like BAC-PL) stay under this.
const symbolMaxLen = 10

// NormalizeSymbol canonicalizes a ticker symbol: trimmed, uppercase.
// Returns the empty string for input that cannot be a symbol.
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if !IsValidSymbol(symbol) {
		return ""
	}
	return symbol
}

// IsValidSymbol reports whether s looks like an exchange ticker symbol:
// 1-10 chars, uppercase letters and digits, with '.' or '-' allowed as
// interior class/series separators (BRK.B, BF-B).
func IsValidSymbol(s string) bool {
	if len(s) == 0 || len(s) > symbolMaxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '-':
			if i == 0 || i == len(s)-1 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// NormalizeSymbols canonicalizes a list of symbols, dropping invalid
// entries and de-duplicating while preserving first-seen order.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		norm := NormalizeSymbol(s)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}
