package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssetClass(t *testing.T) {
	cases := map[string]AssetClass{
		"domestic_equity":   DomesticEquity,
		"jp_stock":          DomesticEquity,
		"US_STOCK":          ForeignEquity,
		" investment_trust": Fund,
		"gold":              Gold,
		"insurance":         Insurance,
	}
	for in, want := range cases {
		got, err := ParseAssetClass(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseAssetClass("bonds")
	assert.ErrorIs(t, err, ErrInvalidHolding)
}

func TestHasMarketPrice(t *testing.T) {
	assert.False(t, Cash.HasMarketPrice())
	assert.False(t, Insurance.HasMarketPrice())
	for _, c := range []AssetClass{DomesticEquity, ForeignEquity, Gold, Crypto, Fund} {
		assert.True(t, c.HasMarketPrice(), c)
	}
}

func TestClassValues_SetGetSum(t *testing.T) {
	var v ClassValues
	for i, c := range AllAssetClasses {
		v.Set(c, float64(i+1))
	}
	assert.Equal(t, 1.0, v.Get(DomesticEquity))
	assert.Equal(t, 7.0, v.Get(Insurance))
	assert.Equal(t, 28.0, v.Sum())
	assert.Equal(t, 0.0, v.Get(AssetClass("other")))
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol(ForeignEquity, " aapl "))
	assert.Equal(t, "BTC", NormalizeSymbol(Crypto, "btc"))
	assert.Equal(t, "7203", NormalizeSymbol(DomesticEquity, "7203.t"))
	assert.Equal(t, "オルカン", NormalizeSymbol(Fund, "オルカン"))
}

func TestIsSupportedSymbol(t *testing.T) {
	assert.True(t, IsSupportedSymbol(Crypto, "eth"))
	assert.False(t, IsSupportedSymbol(Crypto, "SHIB"))
	assert.True(t, IsSupportedSymbol(Fund, "FANG+"))
	assert.False(t, IsSupportedSymbol(Fund, "NASDAQ100"))
	assert.True(t, IsSupportedSymbol(ForeignEquity, "ANYTHING"))
}
