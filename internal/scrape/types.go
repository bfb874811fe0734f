// Package scrape implements the link-discovery pipeline: fetching capture
// pages, extracting candidate WhatsApp links, normalizing and classifying
// them, and recording new discoveries per owner.
package scrape

import (
	"net/http"
	"time"
)

// Page is a monitored capture page registered by an owner. Name is the
// campaign label copied onto every link discovered through the page.
type Page struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Link is a discovered group link. Unique per (URL, Owner); re-discovery of
// the same canonical URL by the same owner is a no-op.
type Link struct {
	URL     string    `json:"url"`
	Source  string    `json:"source"`
	FoundAt time.Time `json:"found_at"`
	Owner   int64     `json:"-"`
}

// RunRecord is the last-run marker for an owner, overwritten on every run.
type RunRecord struct {
	Owner        int64
	RanAt        time.Time
	PagesChecked int
	LinksFound   int
	Message      string
}

// RunResult is the terminal result of one pipeline run. Success is false only
// when the owner has no pages registered; per-page failures never flip it.
type RunResult struct {
	Success      bool   `json:"success"`
	TotalChecked int    `json:"total_checked"`
	LinksFound   int    `json:"links_found"`
	Links        []Link `json:"links"`
	Message      string `json:"message"`
}

// FetchResult is the outcome of a successful page fetch. FinalURL reflects
// the last redirect target and is used only for diagnostic heuristics.
type FetchResult struct {
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	Rendered   bool
}

// CollectResult is the outcome of collecting one page. HasForm and
// ThankYouPage are operator diagnostics and never used for filtering.
type CollectResult struct {
	Links        []string
	HasForm      bool
	ThankYouPage bool
}
