package sources

import (
	"context"
	"errors"
)

const (
	DefaultFXPageURL = "https://finance.yahoo.co.jp/quote/USDJPY=X"
	usdJPYTicker     = "USDJPY=X"
)

var fxPagePrice = []Extractor{
	SelectorExtractor{Selector: "span._3BGK5SVf"},
	SelectorExtractor{Selector: "span.stoksPrice"},
	SelectorExtractor{Selector: `span[class*="price"]`},
}

// FXRate reads the USD/JPY rate from the chart endpoint, then the quote page.
type FXRate struct {
	client  Getter
	chart   chartSource
	pageURL string
}

func NewFXRate(client Getter, chartURL, pageURL string) *FXRate {
	return &FXRate{
		client:  client,
		chart:   chartSource{client: client, baseURL: chartURL},
		pageURL: pageURL,
	}
}

func (p *FXRate) Rate(ctx context.Context) (float64, error) {
	rate, _, chartErr := p.chart.quote(ctx, usdJPYTicker)
	if chartErr == nil {
		return rate, nil
	}
	resp, err := p.client.Get(ctx, p.pageURL, htmlHeaders)
	if err != nil {
		return 0, unavailable("fx", usdJPYTicker, errors.Join(chartErr, err))
	}
	rate, ok := FirstPrice(NewDocument(resp.Body), fxPagePrice)
	if !ok {
		return 0, unavailable("fx", usdJPYTicker, chartErr)
	}
	return rate, nil
}
