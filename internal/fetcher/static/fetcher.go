// Package static implements scrape.Fetcher with a plain HTTP GET via Colly.
package static

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/zaplinks/linkmonitor/internal/scrape"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher performs a single GET per page with a fixed identification header
// and a hard timeout. Redirects are followed; the final URL is reported for
// diagnostics only.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET and returns the final URL and body, or a
// *scrape.FetchError classifying the failure.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (scrape.FetchResult, error) {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		result   scrape.FetchResult
		fetchErr error
	)
	start := time.Now()

	collector.OnResponse(func(r *colly.Response) {
		result = scrape.FetchResult{
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    r.Headers.Clone(),
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = classify(pageURL, r, err)
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(pageURL)
	}()

	select {
	case <-ctx.Done():
		return scrape.FetchResult{}, &scrape.FetchError{
			Kind: scrape.FetchTimeout,
			URL:  pageURL,
			Err:  ctx.Err(),
		}
	case visitErr := <-done:
		if fetchErr != nil {
			return scrape.FetchResult{}, fetchErr
		}
		if visitErr != nil {
			return scrape.FetchResult{}, classify(pageURL, nil, visitErr)
		}
		return result, nil
	}
}

func classify(pageURL string, r *colly.Response, err error) *scrape.FetchError {
	kind := scrape.FetchConnect
	status := 0
	if r != nil && r.StatusCode != 0 {
		kind = scrape.FetchBadStatus
		status = r.StatusCode
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = scrape.FetchTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kind = scrape.FetchTimeout
	}
	return &scrape.FetchError{
		Kind:       kind,
		URL:        pageURL,
		StatusCode: status,
		Err:        err,
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
