package scrape

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// absoluteURLPattern matches an embedded absolute http(s) URL. Quotes and
	// angle brackets terminate the match so URLs lifted out of script text or
	// attribute values do not drag surrounding syntax along.
	absoluteURLPattern = regexp.MustCompile(`https?://[^\s'"<>]+`)

	// navPrefixPattern matches a leading javascript: pseudo-protocol or a
	// window.location assignment wrapping the real target.
	navPrefixPattern = regexp.MustCompile(`(?i)^(?:javascript:|window\.location(?:\.href)?\s*=\s*)`)
)

// Normalize maps a raw candidate string to its canonical URL form: trimmed,
// scripting prefixes stripped, the embedded absolute URL extracted if the
// candidate is wrapped in other text, and the fragment dropped. Query
// parameters are preserved. Normalize is total and idempotent; on input it
// cannot improve it returns the best-effort cleaned text.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	s = strings.TrimSpace(navPrefixPattern.ReplaceAllString(s, ""))
	if m := absoluteURLPattern.FindString(s); m != "" {
		s = m
	}
	u, err := url.Parse(s)
	if err != nil {
		return s
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
