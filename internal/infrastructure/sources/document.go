package sources

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document wraps a response body and parses it as HTML or JSON on demand.
type Document struct {
	body []byte

	html     *goquery.Document
	htmlErr  error
	htmlDone bool

	json     interface{}
	jsonErr  error
	jsonDone bool

	text     string
	textDone bool
}

func NewDocument(body []byte) *Document {
	return &Document{body: body}
}

func (d *Document) HTML() (*goquery.Document, error) {
	if !d.htmlDone {
		d.html, d.htmlErr = goquery.NewDocumentFromReader(bytes.NewReader(d.body))
		d.htmlDone = true
	}
	return d.html, d.htmlErr
}

func (d *Document) JSON() (interface{}, error) {
	if !d.jsonDone {
		d.jsonErr = json.Unmarshal(d.body, &d.json)
		d.jsonDone = true
	}
	return d.json, d.jsonErr
}

var spaceRe = regexp.MustCompile(`\s+`)

// Text is the visible text of an HTML body with whitespace collapsed, or the
// raw body when it does not parse as HTML.
func (d *Document) Text() string {
	if d.textDone {
		return d.text
	}
	raw := string(d.body)
	if doc, err := d.HTML(); err == nil {
		// Strip on a copy; extractors share the parsed tree.
		visible := doc.Selection.Clone()
		visible.Find("script, style, noscript").Remove()
		raw = visible.Text()
	}
	d.text = strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
	d.textDone = true
	return d.text
}

// FirstText returns the trimmed text of the first selector that matches
// something non-empty.
func (d *Document) FirstText(selectors ...string) string {
	doc, err := d.HTML()
	if err != nil {
		return ""
	}
	for _, sel := range selectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			found = strings.TrimSpace(spaceRe.ReplaceAllString(s.Text(), " "))
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}
