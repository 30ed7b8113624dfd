package domain

import "strings"

// SupportedCrypto maps tradable crypto tickers to their display names.
var SupportedCrypto = map[string]string{
	"BTC":  "ビットコイン",
	"ETH":  "イーサリアム",
	"XRP":  "リップル",
	"DOGE": "ドージコイン",
	"LTC":  "ライトコイン",
	"BCH":  "ビットコインキャッシュ",
}

// SupportedFunds maps fund labels to the provider's fund codes.
var SupportedFunds = map[string]string{
	"S&P500": "2558",
	"オルカン":   "03311187",
	"FANG+":  "03312187",
}

// NormalizeSymbol applies the per-class symbol conventions.
func NormalizeSymbol(class AssetClass, symbol string) string {
	s := strings.TrimSpace(symbol)
	switch class {
	case ForeignEquity, Crypto:
		return strings.ToUpper(s)
	case DomesticEquity:
		return strings.TrimSuffix(strings.ToUpper(s), ".T")
	}
	return s
}

// IsSupportedSymbol checks the allow-lists for classes that have one.
func IsSupportedSymbol(class AssetClass, symbol string) bool {
	switch class {
	case Crypto:
		_, ok := SupportedCrypto[strings.ToUpper(symbol)]
		return ok
	case Fund:
		_, ok := SupportedFunds[symbol]
		return ok
	}
	return true
}
