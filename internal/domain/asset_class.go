package domain

import (
	"fmt"
	"strings"
)

// AssetClass identifies how a holding is priced and valued.
type AssetClass string

const (
	DomesticEquity AssetClass = "domestic_equity"
	ForeignEquity  AssetClass = "foreign_equity"
	Cash           AssetClass = "cash"
	Gold           AssetClass = "gold"
	Crypto         AssetClass = "crypto"
	Fund           AssetClass = "fund"
	Insurance      AssetClass = "insurance"
)

// AllAssetClasses lists every class in reporting order.
var AllAssetClasses = []AssetClass{
	DomesticEquity,
	ForeignEquity,
	Cash,
	Gold,
	Crypto,
	Fund,
	Insurance,
}

// names used by older clients and imports
var legacyClassNames = map[string]AssetClass{
	"jp_stock":         DomesticEquity,
	"us_stock":         ForeignEquity,
	"investment_trust": Fund,
}

// ParseAssetClass accepts canonical and legacy class names.
func ParseAssetClass(s string) (AssetClass, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := legacyClassNames[key]; ok {
		return c, nil
	}
	c := AssetClass(key)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown asset class %q", ErrInvalidHolding, s)
	}
	return c, nil
}

func (c AssetClass) Valid() bool {
	for _, known := range AllAssetClasses {
		if c == known {
			return true
		}
	}
	return false
}

// HasMarketPrice reports whether holdings of this class are re-priced from
// external quote sources. Cash and insurance are valued from stored amounts.
func (c AssetClass) HasMarketPrice() bool {
	switch c {
	case DomesticEquity, ForeignEquity, Gold, Crypto, Fund:
		return true
	}
	return false
}

// ClassValues holds one amount per asset class.
type ClassValues struct {
	DomesticEquity float64 `json:"domestic_equity"`
	ForeignEquity  float64 `json:"foreign_equity"`
	Cash           float64 `json:"cash"`
	Gold           float64 `json:"gold"`
	Crypto         float64 `json:"crypto"`
	Fund           float64 `json:"fund"`
	Insurance      float64 `json:"insurance"`
}

func (v ClassValues) Get(c AssetClass) float64 {
	switch c {
	case DomesticEquity:
		return v.DomesticEquity
	case ForeignEquity:
		return v.ForeignEquity
	case Cash:
		return v.Cash
	case Gold:
		return v.Gold
	case Crypto:
		return v.Crypto
	case Fund:
		return v.Fund
	case Insurance:
		return v.Insurance
	}
	return 0
}

func (v *ClassValues) Set(c AssetClass, amount float64) {
	switch c {
	case DomesticEquity:
		v.DomesticEquity = amount
	case ForeignEquity:
		v.ForeignEquity = amount
	case Cash:
		v.Cash = amount
	case Gold:
		v.Gold = amount
	case Crypto:
		v.Crypto = amount
	case Fund:
		v.Fund = amount
	case Insurance:
		v.Insurance = amount
	}
}

// Sum adds the classes in AllAssetClasses order.
func (v ClassValues) Sum() float64 {
	var total float64
	for _, c := range AllAssetClasses {
		total += v.Get(c)
	}
	return total
}
