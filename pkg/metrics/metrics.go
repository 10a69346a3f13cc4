package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// ScrapesTotal counts scrape runs. outcome is one of success, empty,
	// timeout, navigation, extraction, canceled.
	ScrapesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrapes_total",
			Help: "Total number of homepage scrape runs.",
		},
		[]string{"site", "outcome"},
	)

	ScrapeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scrape_duration_seconds",
			Help:    "Duration of render plus extraction.",
			Buckets: []float64{1, 5, 10, 15, 30, 60, 120},
		},
		[]string{"site"},
	)

	ScrapeRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scrape_records",
			Help: "Records produced by the latest scrape, by classification.",
		},
		[]string{"site", "classification"},
	)

	BrowserSessionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "browser_sessions_in_use",
			Help: "Browser sessions currently open.",
		},
	)
)
