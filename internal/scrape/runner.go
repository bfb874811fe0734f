package scrape

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zaplinks/linkmonitor/internal/metrics"
)

// Runner orchestrates one owner-scoped pipeline run: it walks the owner's
// page list in order, collects and cleans each page's candidates, persists
// the new links, and notifies once per newly stored link. A run holds no
// cross-run state; all persistence goes through the injected stores.
type Runner struct {
	pages     PageSource
	collector Collector
	links     LinkStore
	runs      RunRecordStore
	notifier  Notifier
	events    EventPublisher
	clock     Clock
	logger    *zap.Logger
}

// NewRunner wires a Runner. events may be nil when no topic is configured.
func NewRunner(
	pages PageSource,
	collector Collector,
	links LinkStore,
	runs RunRecordStore,
	notifier Notifier,
	events EventPublisher,
	clock Clock,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		pages:     pages,
		collector: collector,
		links:     links,
		runs:      runs,
		notifier:  notifier,
		events:    events,
		clock:     clock,
		logger:    logger,
	}
}

// Run executes one pass over the owner's registered pages. A failing page
// contributes zero links and the run continues; the only non-success terminal
// result is an empty page list. The returned error is reserved for the page
// list being unreadable.
func (r *Runner) Run(ctx context.Context, owner int64) (RunResult, error) {
	r.logger.Info("starting link collection", zap.Int64("owner", owner))

	pages, err := r.pages.ListPages(ctx, owner)
	if err != nil {
		metrics.ObserveRun("error")
		return RunResult{}, fmt.Errorf("load pages: %w", err)
	}
	if len(pages) == 0 {
		metrics.ObserveRun("empty")
		return RunResult{
			Success: false,
			Links:   []Link{},
			Message: "no pages registered",
		}, nil
	}

	var (
		found        []Link
		totalChecked int
	)
	for _, page := range pages {
		pageURL := strings.TrimSpace(page.URL)
		name := strings.TrimSpace(page.Name)
		if pageURL == "" {
			continue
		}
		totalChecked++

		r.logger.Info("checking page", zap.String("name", name), zap.String("url", pageURL))
		collected := r.collector.Collect(ctx, pageURL)

		cleaned := cleanBatch(collected.Links)
		if len(cleaned) == 0 {
			continue
		}

		inserted, saveErr := r.links.Save(ctx, cleaned, name, owner, r.clock.Now().UTC())
		if saveErr != nil {
			r.logger.Warn("link batch save failed",
				zap.String("page", name),
				zap.Error(saveErr),
			)
			continue
		}

		for _, linkURL := range inserted {
			link := Link{
				URL:     linkURL,
				Source:  name,
				FoundAt: r.clock.Now().UTC(),
				Owner:   owner,
			}
			found = append(found, link)

			delivered := r.notifier.Notify(ctx, linkURL, name)
			metrics.ObserveNotification(delivered)

			if r.events != nil {
				if pubErr := r.events.PublishLinkFound(ctx, link); pubErr != nil {
					r.logger.Warn("link event publish failed",
						zap.String("url", linkURL),
						zap.Error(pubErr),
					)
				}
			}
		}
		metrics.ObserveLinksFound(len(inserted))
	}

	msg := fmt.Sprintf("Run finished. Pages checked: %d, links found: %d", totalChecked, len(found))
	rec := RunRecord{
		Owner:        owner,
		RanAt:        r.clock.Now().UTC(),
		PagesChecked: totalChecked,
		LinksFound:   len(found),
		Message:      msg,
	}
	if writeErr := r.runs.Write(ctx, rec); writeErr != nil {
		r.logger.Warn("run record write failed", zap.Int64("owner", owner), zap.Error(writeErr))
	}

	r.logger.Info("link collection finished",
		zap.Int64("owner", owner),
		zap.Int("pages_checked", totalChecked),
		zap.Int("links_found", len(found)),
	)
	metrics.ObserveRun("ok")

	if found == nil {
		found = []Link{}
	}
	return RunResult{
		Success:      true,
		TotalChecked: totalChecked,
		LinksFound:   len(found),
		Links:        found,
		Message:      msg,
	}, nil
}

// cleanBatch normalizes and classifies one page's candidates, keeping only
// group links, deduplicated in first-seen order. Stable order keeps
// notification ordering deterministic for identical input.
func cleanBatch(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	var cleaned []string
	for _, raw := range candidates {
		c := Normalize(raw)
		if !IsGroupLink(c) {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cleaned = append(cleaned, c)
	}
	return cleaned
}
