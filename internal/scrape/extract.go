package scrape

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// linkMarker selects candidates regardless of host: sites frequently hide
// the real invite behind redirector URLs that still carry the word.
const linkMarker = "whatsapp"

// markerURLPattern matches an absolute http(s) URL containing the marker
// anywhere in its text.
var markerURLPattern = regexp.MustCompile(`(?i)https?://[^\s'"<>]*whatsapp[^\s'"<>]*`)

// Extract scans raw HTML for candidate links using three independent
// strategies, unioned and deduplicated by exact text in first-seen order:
//
//  1. anchor hrefs containing the marker, taken verbatim;
//  2. absolute URLs embedded in inline click-handler attributes;
//  3. absolute URLs embedded in inline script bodies.
//
// Malformed HTML degrades to fewer matches, never to an error.
func Extract(html []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var candidates []string
	add := func(s string) {
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		candidates = append(candidates, s)
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if strings.Contains(strings.ToLower(href), linkMarker) {
			add(href)
		}
	})

	doc.Find("[onclick]").Each(func(_ int, sel *goquery.Selection) {
		handler := sel.AttrOr("onclick", "")
		for _, m := range absoluteURLPattern.FindAllString(handler, -1) {
			if strings.Contains(strings.ToLower(m), linkMarker) {
				add(m)
			}
		}
	})

	doc.Find("script").Each(func(_ int, sel *goquery.Selection) {
		for _, m := range markerURLPattern.FindAllString(sel.Text(), -1) {
			add(m)
		}
	})

	return candidates
}
