// Package webpage scrapes the few fields the resolver needs from Letv
// HTML pages.
package webpage

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ytget/letv/errs"
)

// SiteZone is the site's local time, UTC+8.
var SiteZone = time.FixedZone("UTC+8", 8*60*60)

var (
	publishTimeRe = regexp.MustCompile(`发布时间&nbsp;([^<>]+) `)

	publishTimeLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}

	errNoPublishTime = errors.New("publish time label not found")
)

// ParsePublishTime finds the "发布时间" label in a video page and parses the
// time after it as site-local time. Failures are *errs.ParseError.
func ParsePublishTime(page []byte) (time.Time, error) {
	m := publishTimeRe.FindSubmatch(page)
	if m == nil {
		return time.Time{}, &errs.ParseError{Field: "publish time", Err: errNoPublishTime}
	}
	raw := strings.TrimSpace(string(m[1]))

	var lastErr error
	for _, layout := range publishTimeLayouts {
		t, err := time.ParseInLocation(layout, raw, SiteZone)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &errs.ParseError{Field: "publish time", Input: raw, Err: lastErr}
}

// Page is a parsed HTML document.
type Page struct {
	doc *goquery.Document
}

// Parse builds a Page from raw HTML.
func Parse(html []byte) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &errs.ParseError{Field: "html", Err: err}
	}
	return &Page{doc: doc}, nil
}

// Meta returns the content of the first <meta> whose name, property or
// itemprop equals name (case-insensitively).
func (p *Page) Meta(name string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	var (
		content string
		found   bool
	)
	p.doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"name", "property", "itemprop"} {
			v, ok := s.Attr(attr)
			if !ok || strings.ToLower(strings.TrimSpace(v)) != want {
				continue
			}
			c, ok := s.Attr("content")
			if !ok {
				continue
			}
			content, found = strings.TrimSpace(c), true
			return false
		}
		return true
	})
	return content, found
}
