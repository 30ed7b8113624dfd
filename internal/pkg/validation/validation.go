package validation

import (
	"math"
	"regexp"
	"unicode/utf8"
)

// Symbols are tickers, fund labels or currency codes: letters (any script),
// digits, and the few punctuation marks real tickers use.
var symbolRe = regexp.MustCompile(`^[\p{L}\p{N}&+.\-=^_ ]+$`)

const maxSymbolLen = 64

func IsValidSymbol(symbol string) bool {
	n := utf8.RuneCountInString(symbol)
	return n > 0 && n <= maxSymbolLen && symbolRe.MatchString(symbol)
}

// IsValidAmount accepts finite, non-negative numbers.
func IsValidAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// IsValidDisplayName limits free-text names to something that fits the column.
func IsValidDisplayName(name string) bool {
	return utf8.RuneCountInString(name) <= 255
}
