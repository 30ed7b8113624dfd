package sources

import "strings"

// Japanese corporate forms appear as prefix or suffix without a separator.
var jpLegalForms = []string{"株式会社", "（株）", "(株)", "㈱"}

// Latin forms only count when separated from the name by a space or comma.
var latinLegalForms = []string{
	"Co., Ltd.", "Co.,Ltd.", "Co., Ltd", "Co. Ltd.",
	"Corporation", "Incorporated", "Limited", "Holdings Inc.",
	"Inc.", "Inc", "Corp.", "Corp", "Ltd.", "Ltd", "PLC", "plc", "N.V.", "S.A.", "AG", "SE",
}

// StripLegalSuffix removes corporate-form words from a company name:
// "Apple Inc." becomes "Apple", "トヨタ自動車株式会社" becomes "トヨタ自動車".
func StripLegalSuffix(name string) string {
	name = strings.TrimSpace(name)
	for {
		before := name
		for _, f := range jpLegalForms {
			name = strings.TrimSpace(strings.TrimPrefix(name, f))
			name = strings.TrimSpace(strings.TrimSuffix(name, f))
		}
		for _, f := range latinLegalForms {
			for _, sep := range []string{" ", ", ", ","} {
				if strings.HasSuffix(name, sep+f) {
					name = strings.TrimSpace(strings.TrimSuffix(name, sep+f))
				}
			}
		}
		name = strings.TrimRight(name, ", ")
		if name == before {
			return name
		}
	}
}

// beforeParen keeps the part of a heading before a ticker in parentheses,
// e.g. "Apple Inc. (AAPL)".
func beforeParen(s string) string {
	if i := strings.Index(s, "("); i > 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
