package sources

import (
	"context"
)

const (
	DefaultGoldURL = "https://gold.tanaka.co.jp/commodity/souba/m-gold.php"
	goldName       = "金(Gold)"
)

var goldPrice = []Extractor{
	SelectorExtractor{Selector: "table.table_main tr:nth-of-type(2) td:nth-of-type(3)"},
	SelectorExtractor{Selector: "td.retail_tax"},
	LabelNear("店頭小売価格", "円"),
	LabelNear("小売価格", "円"),
}

// Gold quotes the retail price of gold per gram in JPY. The symbol is ignored.
type Gold struct {
	client Getter
	url    string
}

func NewGold(client Getter, url string) *Gold {
	return &Gold{client: client, url: url}
}

func (p *Gold) Quote(ctx context.Context, symbol string) (float64, string, error) {
	resp, err := p.client.Get(ctx, p.url, htmlHeaders)
	if err != nil {
		return 0, "", unavailable("gold", symbol, err)
	}
	price, ok := FirstPrice(NewDocument(resp.Body), goldPrice)
	if !ok {
		return 0, "", unavailable("gold", symbol, nil)
	}
	return price, goldName, nil
}
