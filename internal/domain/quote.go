package domain

import "time"

// FXKey is the quote cache key for the USD/JPY rate.
const FXKey = "fx:USDJPY"

// Quote is a price observed from an external source.
type Quote struct {
	AssetClass AssetClass `json:"asset_class"`
	Symbol     string     `json:"symbol"`
	Price      float64    `json:"price"`
	Name       string     `json:"name"`
	FetchedAt  time.Time  `json:"fetched_at"`
}

// QuoteKey builds the cache key for a symbol within a class.
func QuoteKey(class AssetClass, symbol string) string {
	return string(class) + ":" + symbol
}

// HoldingRef is the minimal holding identity handed to the price fetcher.
type HoldingRef struct {
	ID         uint
	AssetClass AssetClass
	Symbol     string
}

// PriceUpdate is a fetched price destined for one holding row.
type PriceUpdate struct {
	ID    uint
	Price float64
	Name  string
}
