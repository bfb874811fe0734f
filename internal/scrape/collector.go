package scrape

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/zaplinks/linkmonitor/internal/metrics"
)

// thankYouMarkers flag a post-signup completion page by its final URL.
var thankYouMarkers = []string{"obrigado", "thank", "success", "confirmacao"}

// PageCollector scrapes a single capture page: one fetch, candidate
// extraction, and light diagnostics. When an Archiver is configured the raw
// body is also snapshotted for later inspection.
type PageCollector struct {
	fetcher Fetcher
	archive Archiver
	logger  *zap.Logger
}

// NewPageCollector builds a collector. archive may be nil to disable
// snapshotting.
func NewPageCollector(fetcher Fetcher, archive Archiver, logger *zap.Logger) *PageCollector {
	return &PageCollector{
		fetcher: fetcher,
		archive: archive,
		logger:  logger,
	}
}

// Collect fetches pageURL and returns its candidate links plus diagnostics.
// Fetch failures are logged and reported as an empty result so one bad page
// never aborts a run.
func (c *PageCollector) Collect(ctx context.Context, pageURL string) CollectResult {
	res, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		c.logger.Warn("page fetch failed",
			zap.String("url", pageURL),
			zap.String("kind", string(fetchErrorKind(err))),
			zap.Error(err),
		)
		metrics.ObservePageFetch(pageURL, "error")
		return CollectResult{}
	}
	metrics.ObservePageFetch(pageURL, "ok")

	if c.archive != nil {
		name := snapshotObjectName(res.FinalURL, time.Now().UTC())
		if archiveErr := c.archive.Save(ctx, name, res.Body); archiveErr != nil {
			c.logger.Warn("page snapshot archive failed",
				zap.String("object", name),
				zap.Error(archiveErr),
			)
		}
	}

	return CollectResult{
		Links:        Extract(res.Body),
		HasForm:      hasForm(res.Body),
		ThankYouPage: isThankYouURL(res.FinalURL),
	}
}

func fetchErrorKind(err error) FetchErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FetchConnect
}

func hasForm(html []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return false
	}
	return doc.Find("form").Length() > 0
}

func isThankYouURL(finalURL string) bool {
	l := strings.ToLower(finalURL)
	for _, marker := range thankYouMarkers {
		if strings.Contains(l, marker) {
			return true
		}
	}
	return false
}

func snapshotObjectName(pageURL string, fetchedAt time.Time) string {
	sum := sha256.Sum256([]byte(pageURL))
	return path.Join("pages", fetchedAt.Format("2006-01-02"), fmt.Sprintf("%x.html", sum))
}
