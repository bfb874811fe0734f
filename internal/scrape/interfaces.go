package scrape

import (
	"context"
	"time"
)

// Fetcher retrieves a single page. Implementations must bound the request
// with a hard timeout and return a *FetchError on failure.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (FetchResult, error)
}

// Collector scrapes one page for candidate links. A fetch failure yields an
// empty result, never an error.
type Collector interface {
	Collect(ctx context.Context, pageURL string) CollectResult
}

// PageSource lists an owner's registered pages in registration order.
type PageSource interface {
	ListPages(ctx context.Context, owner int64) ([]Page, error)
}

// LinkStore persists discovered links keyed by (url, owner). Save inserts
// each link if absent and reports the URLs that were actually new; per-item
// failures are swallowed. List returns most-recently-inserted first; a nil
// owner returns links across all owners (administrative use).
type LinkStore interface {
	Save(ctx context.Context, urls []string, source string, owner int64, foundAt time.Time) ([]string, error)
	List(ctx context.Context, limit int, owner *int64) ([]Link, error)
}

// RunRecordStore keeps the per-owner last-run marker.
type RunRecordStore interface {
	Write(ctx context.Context, rec RunRecord) error
	Read(ctx context.Context, owner int64) (RunRecord, bool, error)
}

// Notifier delivers a message for a newly discovered link. Best-effort:
// returns true only on confirmed delivery and never fails the pipeline.
type Notifier interface {
	Notify(ctx context.Context, link, source string) bool
}

// Archiver stores a raw page snapshot under an object name.
type Archiver interface {
	Save(ctx context.Context, objectName string, data []byte) error
}

// EventPublisher pushes a link-found event to an external topic.
type EventPublisher interface {
	PublishLinkFound(ctx context.Context, link Link) error
}

// Clock returns the current time (swappable in tests).
type Clock interface {
	Now() time.Time
}
