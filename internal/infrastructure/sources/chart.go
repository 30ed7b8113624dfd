package sources

import (
	"context"
	"net/http"
	"net/url"
)

// DefaultChartURL is Yahoo's v8 chart endpoint. It serves JSON for equities,
// ETFs and FX pairs.
const DefaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

var chartPrice = []Extractor{
	JSONPathExtractor{Path: "$.chart.result[0].meta.regularMarketPrice"},
	JSONPathExtractor{Path: "$.chart.result[0].indicators.quote[0].close", Last: true},
	JSONPathExtractor{Path: "$.chart.result[0].meta.chartPreviousClose"},
}

var (
	jsonHeaders = http.Header{"Accept": {"application/json"}}
	htmlHeaders = http.Header{"Accept": {"text/html,application/xhtml+xml"}}
)

// Getter is the part of Client the parsers need.
type Getter interface {
	Get(ctx context.Context, url string, headers http.Header) (*Response, error)
}

type chartSource struct {
	client  Getter
	baseURL string
}

// quote returns the price and, when present, the instrument's long name.
func (c chartSource) quote(ctx context.Context, ticker string) (float64, string, error) {
	resp, err := c.client.Get(ctx, c.baseURL+"/"+url.PathEscape(ticker)+"?interval=1d&range=5d", jsonHeaders)
	if err != nil {
		return 0, "", err
	}
	doc := NewDocument(resp.Body)
	price, ok := FirstPrice(doc, chartPrice)
	if !ok {
		return 0, "", unavailable("chart", ticker, nil)
	}
	name := JSONString(doc, "$.chart.result[0].meta.longName")
	if name == "" {
		name = JSONString(doc, "$.chart.result[0].meta.shortName")
	}
	return price, name, nil
}
