// Package metrics exposes Prometheus collectors for the link monitor.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pipelineRunsTotal       *prometheus.CounterVec
	pipelinePagesTotal      *prometheus.CounterVec
	pipelineLinksFoundTotal prometheus.Counter
	notificationsTotal      *prometheus.CounterVec
	httpRequestsTotal       *prometheus.CounterVec
	httpRequestDurationSecs *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		pipelineRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkmonitor_runs_total",
				Help: "Total pipeline runs, labeled by terminal status.",
			},
			[]string{"status"},
		)

		pipelinePagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkmonitor_pages_total",
				Help: "Total capture pages fetched, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		pipelineLinksFoundTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "linkmonitor_links_found_total",
				Help: "Total newly discovered group links.",
			},
		)

		notificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkmonitor_notifications_total",
				Help: "Total notification attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSecs = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite extracts a lowercase hostname from a URL, or "unknown".
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun increments the run counter for the given terminal status.
func ObserveRun(status string) {
	if pipelineRunsTotal == nil {
		return
	}
	pipelineRunsTotal.WithLabelValues(status).Inc()
}

// ObservePageFetch increments the page fetch counter.
func ObservePageFetch(site string, outcome string) {
	if pipelinePagesTotal == nil {
		return
	}
	pipelinePagesTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveLinksFound adds newly discovered links to the link counter.
func ObserveLinksFound(n int) {
	if pipelineLinksFoundTotal == nil || n <= 0 {
		return
	}
	pipelineLinksFoundTotal.Add(float64(n))
}

// ObserveNotification increments the notification counter.
func ObserveNotification(delivered bool) {
	if notificationsTotal == nil {
		return
	}
	outcome := "failed"
	if delivered {
		outcome = "delivered"
	}
	notificationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSecs.WithLabelValues(method, route).Observe(duration.Seconds())
}
