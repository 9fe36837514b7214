package browser

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"browsekit/lib/htmlutil"
)

// URLKind is the category a URL extracted from a page belongs to.
type URLKind int

const (
	Hyperlink URLKind = iota
	Image
	Script
	Stylesheet
)

func (k URLKind) String() string {
	switch k {
	case Hyperlink:
		return "hyperlink"
	case Image:
		return "image"
	case Script:
		return "script"
	case Stylesheet:
		return "stylesheet"
	}
	return "unknown"
}

// Kinds lists every URL bucket in display order.
var Kinds = []URLKind{Hyperlink, Image, Script, Stylesheet}

func newURLBuckets() map[URLKind][]string {
	return map[URLKind][]string{
		Hyperlink:  {},
		Image:      {},
		Script:     {},
		Stylesheet: {},
	}
}

var (
	imageSrcPattern  = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|gif)`)
	scriptSrcPattern = regexp.MustCompile(`(?i)\.js`)
)

// Parse extracts the URL buckets and form list from the current page. It is
// called automatically on open unless auto parsing is disabled, and is a
// no-op when the current page has already been parsed. Buckets and forms
// are rebuilt in full on every run that does work.
func (s *Session) Parse() error {
	if s.doc == nil {
		return ErrNoPage
	}
	if s.parsed {
		return nil
	}

	base := s.doc.Url
	urls := newURLBuckets()
	collect := func(kind URLKind, ref string) {
		abs := htmlutil.AbsoluteURL(base, ref)
		if abs == "" {
			return
		}
		urls[kind] = append(urls[kind], abs)
	}

	s.doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		collect(Hyperlink, sel.AttrOr("href", ""))
	})
	s.doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		if imageSrcPattern.MatchString(sel.AttrOr("src", "")) {
			collect(Image, sel.AttrOr("src", ""))
		}
	})
	s.doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		if scriptSrcPattern.MatchString(sel.AttrOr("src", "")) {
			collect(Script, sel.AttrOr("src", ""))
		}
	})
	s.doc.Find("link").Each(func(_ int, sel *goquery.Selection) {
		if sel.AttrOr("type", "") == "text/css" {
			collect(Stylesheet, sel.AttrOr("href", ""))
		}
	})
	s.urls = urls

	s.forms = nil
	s.doc.Find("form").Each(func(_ int, sel *goquery.Selection) {
		s.forms = append(s.forms, sel)
	})

	s.parsed = true
	return nil
}

// URLs returns the absolute URLs of the given kind found in the current
// page, in document order. Only populated after Parse has run.
func (s *Session) URLs(kind URLKind) []string {
	return s.urls[kind]
}
