package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"folio-backend/internal/domain"
)

const DefaultFundURL = "https://www.rakuten-sec.co.jp/web/fund/detail/"

var fundPrice = []Extractor{
	SelectorExtractor{Selector: "span.value"},
	SelectorExtractor{Selector: "dd.fund-detail-nav"},
	LabelNear("基準価額", "円"),
}

// Fund quotes the net asset value per 10,000 units of a supported fund.
type Fund struct {
	client  Getter
	baseURL string
}

func NewFund(client Getter, baseURL string) *Fund {
	return &Fund{client: client, baseURL: baseURL}
}

func (p *Fund) Quote(ctx context.Context, symbol string) (float64, string, error) {
	label := strings.TrimSpace(symbol)
	code, ok := domain.SupportedFunds[label]
	if !ok {
		return 0, "", fmt.Errorf("%w: fund %q", domain.ErrUnsupportedSymbol, symbol)
	}

	resp, err := p.client.Get(ctx, p.baseURL+"?ID="+url.QueryEscape(code), htmlHeaders)
	if err != nil {
		return 0, "", unavailable("fund", label, err)
	}
	price, ok := FirstPrice(NewDocument(resp.Body), fundPrice)
	if !ok {
		return 0, "", unavailable("fund", label, nil)
	}
	return price, label, nil
}
