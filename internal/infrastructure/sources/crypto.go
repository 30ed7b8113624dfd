package sources

import (
	"context"
	"fmt"
	"strings"

	"folio-backend/internal/domain"
)

const DefaultCryptoURL = "https://cc.minkabu.jp"

// Crypto quotes supported coins in JPY.
type Crypto struct {
	client  Getter
	baseURL string
}

func NewCrypto(client Getter, baseURL string) *Crypto {
	return &Crypto{client: client, baseURL: baseURL}
}

func (p *Crypto) Quote(ctx context.Context, symbol string) (float64, string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	name, ok := domain.SupportedCrypto[sym]
	if !ok {
		return 0, "", fmt.Errorf("%w: crypto %q", domain.ErrUnsupportedSymbol, symbol)
	}

	resp, err := p.client.Get(ctx, p.baseURL+"/pair/"+strings.ToLower(sym)+"_jpy", htmlHeaders)
	if err != nil {
		return 0, "", unavailable("crypto", sym, err)
	}
	price, ok := FirstPrice(NewDocument(resp.Body), []Extractor{
		SelectorExtractor{Selector: "div.md_price"},
		SelectorExtractor{Selector: "span.price"},
		LabelNear(sym+"/JPY", "円"),
		LabelNear("現在値", "円"),
	})
	if !ok {
		return 0, "", unavailable("crypto", sym, nil)
	}
	return price, name, nil
}
