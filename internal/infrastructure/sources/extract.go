package sources

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"folio-backend/internal/domain"

	"github.com/PaesslerAG/jsonpath"
	"github.com/PuerkitoBio/goquery"
)

// Extractor is one way of finding a price in a document.
type Extractor interface {
	Extract(d *Document) (float64, bool)
}

// FirstPrice tries each extractor in order and returns the first positive price.
func FirstPrice(d *Document, extractors []Extractor) (float64, bool) {
	for _, e := range extractors {
		if v, ok := e.Extract(d); ok {
			return v, true
		}
	}
	return 0, false
}

// SelectorExtractor reads the text (or an attribute) of the first element
// matching a CSS selector that holds a parseable price.
type SelectorExtractor struct {
	Selector string
	Attr     string
}

func (e SelectorExtractor) Extract(d *Document) (float64, bool) {
	doc, err := d.HTML()
	if err != nil {
		return 0, false
	}
	var (
		price float64
		found bool
	)
	doc.Find(e.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if e.Attr != "" {
			text, _ = s.Attr(e.Attr)
		}
		price, found = ParsePrice(text)
		return !found
	})
	return price, found
}

// LabelRegexExtractor matches a pattern against the page text. The first
// submatch must be the number.
type LabelRegexExtractor struct {
	Pattern *regexp.Regexp
}

// LabelNear builds an extractor for a number that follows label within a
// short distance and is followed by unit.
func LabelNear(label, unit string) LabelRegexExtractor {
	pattern := regexp.QuoteMeta(label) + `[^0-9]{0,40}?([0-9][0-9,]*(?:\.[0-9]+)?)\s*` + regexp.QuoteMeta(unit)
	return LabelRegexExtractor{Pattern: regexp.MustCompile(pattern)}
}

func (e LabelRegexExtractor) Extract(d *Document) (float64, bool) {
	m := e.Pattern.FindStringSubmatch(d.Text())
	if len(m) < 2 {
		return 0, false
	}
	return ParsePrice(m[1])
}

// JSONPathExtractor evaluates a JSONPath against a JSON body. With Last set and
// an array result, the last positive element wins.
type JSONPathExtractor struct {
	Path string
	Last bool
}

func (e JSONPathExtractor) Extract(d *Document) (float64, bool) {
	data, err := d.JSON()
	if err != nil {
		return 0, false
	}
	val, err := jsonpath.Get(e.Path, data)
	if err != nil {
		return 0, false
	}
	// jsonpath returns a list for wildcard and index paths
	if list, ok := val.([]interface{}); ok {
		if !e.Last {
			if len(list) == 0 {
				return 0, false
			}
			return numberValue(list[0])
		}
		if len(list) == 1 {
			if inner, ok := list[0].([]interface{}); ok {
				list = inner
			}
		}
		for i := len(list) - 1; i >= 0; i-- {
			if v, ok := numberValue(list[i]); ok {
				return v, true
			}
		}
		return 0, false
	}
	return numberValue(val)
}

// JSONString returns the string at path, or "".
func JSONString(d *Document, path string) string {
	data, err := d.JSON()
	if err != nil {
		return ""
	}
	val, err := jsonpath.Get(path, data)
	if err != nil {
		return ""
	}
	if list, ok := val.([]interface{}); ok && len(list) > 0 {
		val = list[0]
	}
	s, _ := val.(string)
	return strings.TrimSpace(s)
}

func numberValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return validPrice(n)
	case string:
		return ParsePrice(n)
	}
	return 0, false
}

var (
	priceReplacer = strings.NewReplacer(",", "", "円", "", "¥", "", "￥", "", "$", "", " ", "", " ", "")
	leadingNumRe  = regexp.MustCompile(`^[0-9]+(?:\.[0-9]+)?`)
)

// ParsePrice reads a positive number from display text such as "2,345.5円".
// The number must start the cleaned text.
func ParsePrice(s string) (float64, bool) {
	cleaned := priceReplacer.Replace(strings.TrimSpace(s))
	m := leadingNumRe.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return validPrice(v)
}

func validPrice(v float64) (float64, bool) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func unavailable(source, symbol string, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrQuoteUnavailable, source, symbol, cause)
	}
	return fmt.Errorf("%w: %s %s: no price found", domain.ErrQuoteUnavailable, source, symbol)
}
