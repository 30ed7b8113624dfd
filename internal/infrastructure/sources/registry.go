package sources

import (
	"context"

	"folio-backend/internal/domain"
)

// Endpoints holds the base URLs of every source. Tests point them at local servers.
type Endpoints struct {
	ChartURL        string
	DomesticPageURL string
	ForeignPageURL  string
	GoldURL         string
	CryptoURL       string
	FundURL         string
	FXPageURL       string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		ChartURL:        DefaultChartURL,
		DomesticPageURL: DefaultDomesticPageURL,
		ForeignPageURL:  DefaultForeignPageURL,
		GoldURL:         DefaultGoldURL,
		CryptoURL:       DefaultCryptoURL,
		FundURL:         DefaultFundURL,
		FXPageURL:       DefaultFXPageURL,
	}
}

// Parser returns a price and display name for a symbol.
type Parser interface {
	Quote(ctx context.Context, symbol string) (float64, string, error)
}

// NewParsers builds one parser per market-priced asset class.
func NewParsers(client Getter, ep Endpoints) map[domain.AssetClass]Parser {
	return map[domain.AssetClass]Parser{
		domain.DomesticEquity: NewDomesticEquity(client, ep.ChartURL, ep.DomesticPageURL),
		domain.ForeignEquity:  NewForeignEquity(client, ep.ChartURL, ep.ForeignPageURL),
		domain.Gold:           NewGold(client, ep.GoldURL),
		domain.Crypto:         NewCrypto(client, ep.CryptoURL),
		domain.Fund:           NewFund(client, ep.FundURL),
	}
}
