package sources

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"folio-backend/internal/domain"
)

const (
	DefaultDomesticPageURL = "https://finance.yahoo.co.jp/quote"
	DefaultForeignPageURL  = "https://finance.yahoo.com/quote"
)

// equityParser prices from the chart endpoint and falls back to the quote
// page, which is also where the display name comes from.
type equityParser struct {
	source        string
	client        Getter
	chart         chartSource
	ticker        func(symbol string) string
	pageURL       func(symbol string) string
	pagePrice     []Extractor
	nameSelectors []string
	cleanName     func(string) string
	// preferPageName takes the name from the page over the chart's. Page
	// names are cached per ticker so the page is fetched once.
	preferPageName bool
	pageNames      sync.Map
}

func (p *equityParser) Quote(ctx context.Context, symbol string) (float64, string, error) {
	ticker := p.ticker(symbol)
	price, name, chartErr := p.chart.quote(ctx, ticker)

	needPage := chartErr != nil || name == ""
	if p.preferPageName {
		if cached, ok := p.pageNames.Load(ticker); ok {
			name = cached.(string)
		} else {
			needPage = true
		}
	}

	if needPage {
		resp, pageErr := p.client.Get(ctx, p.pageURL(symbol), htmlHeaders)
		switch {
		case pageErr == nil:
			doc := NewDocument(resp.Body)
			if chartErr != nil {
				v, ok := FirstPrice(doc, p.pagePrice)
				if !ok {
					return 0, "", unavailable(p.source, symbol, chartErr)
				}
				price, chartErr = v, nil
			}
			if n := doc.FirstText(p.nameSelectors...); n != "" {
				name = n
				if p.preferPageName {
					p.pageNames.Store(ticker, n)
				}
			}
		case chartErr != nil:
			return 0, "", unavailable(p.source, symbol, errors.Join(chartErr, pageErr))
		}
	}

	name = p.cleanName(name)
	if name == "" {
		name = symbol
	}
	return price, name, nil
}

// DomesticEquity quotes Tokyo-listed stocks by their numeric code.
type DomesticEquity struct {
	equityParser
}

func NewDomesticEquity(client Getter, chartURL, pageURL string) *DomesticEquity {
	return &DomesticEquity{equityParser: equityParser{
		source: "domestic_equity",
		client: client,
		chart:  chartSource{client: client, baseURL: chartURL},
		ticker: func(s string) string { return domesticCode(s) + ".T" },
		pageURL: func(s string) string {
			return pageURL + "/" + url.PathEscape(domesticCode(s)+".T")
		},
		pagePrice: []Extractor{
			SelectorExtractor{Selector: "span._3BGK5SVf"},
			SelectorExtractor{Selector: "span.stoksPrice"},
			SelectorExtractor{Selector: `span[class*="price"]`},
			SelectorExtractor{Selector: `div[class*="price"]`},
			LabelNear("現在値", "円"),
		},
		nameSelectors:  []string{"h1._1jTcLIqL", "header h1", "h1"},
		cleanName:      StripLegalSuffix,
		preferPageName: true,
	}}
}

func domesticCode(symbol string) string {
	return domain.NormalizeSymbol(domain.DomesticEquity, symbol)
}

// ForeignEquity quotes US-listed stocks and ETFs. Prices are in USD.
type ForeignEquity struct {
	equityParser
}

func NewForeignEquity(client Getter, chartURL, pageURL string) *ForeignEquity {
	return &ForeignEquity{equityParser: equityParser{
		source: "foreign_equity",
		client: client,
		chart:  chartSource{client: client, baseURL: chartURL},
		ticker: strings.ToUpper,
		pageURL: func(s string) string {
			return pageURL + "/" + url.PathEscape(strings.ToUpper(s))
		},
		pagePrice: []Extractor{
			SelectorExtractor{Selector: `fin-streamer[data-field="regularMarketPrice"]`, Attr: "data-value"},
			SelectorExtractor{Selector: `fin-streamer[data-field="regularMarketPrice"]`},
			SelectorExtractor{Selector: `[data-testid="qsp-price"]`},
		},
		nameSelectors: []string{"h1"},
		cleanName: func(s string) string {
			return StripLegalSuffix(beforeParen(s))
		},
	}}
}
