// Package metrics holds the Prometheus metrics of the crawl and scan pipelines.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// MetricsNamespace is the namespace for all leadscan metrics.
	MetricsNamespace = "leadscan"

	subsystemCrawler = "crawler"
	subsystemScanner = "scanner"
	subsystemSSE     = "sse"
)

// Scan result label values.
const (
	ScanResultFlagged = "flagged"
	ScanResultClean   = "clean"
	ScanResultError   = "error"
)

// Metrics holds the pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	CrawlsTotal          *prometheus.CounterVec
	CrawlDurationSeconds *prometheus.HistogramVec
	PagesFetchedTotal    prometheus.Counter

	ScansTotal          *prometheus.CounterVec
	ScanDurationSeconds *prometheus.HistogramVec

	SSEClients prometheus.Gauge
}

// New creates and registers the metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	m := &Metrics{}

	m.initCrawlMetrics(factory)
	m.initScanMetrics(factory)

	m.SSEClients = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Subsystem: subsystemSSE,
		Name:      "clients",
		Help:      "Number of connected status stream subscribers",
	})

	return m
}

// NewRegistry returns a registry carrying the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) initCrawlMetrics(factory promauto.Factory) {
	m.CrawlsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: subsystemCrawler,
			Name:      "crawls_total",
			Help:      "Total number of domain crawls by outcome",
		},
		[]string{"outcome"},
	)

	m.CrawlDurationSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: subsystemCrawler,
			Name:      "crawl_duration_seconds",
			Help:      "Duration of domain crawls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s to ~2min
		},
		[]string{"outcome"},
	)

	m.PagesFetchedTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: subsystemCrawler,
		Name:      "pages_fetched_total",
		Help:      "Total number of pages fetched by crawls",
	})
}

func (m *Metrics) initScanMetrics(factory promauto.Factory) {
	m.ScansTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: subsystemScanner,
			Name:      "scans_total",
			Help:      "Total number of scanner runs by scanner and result",
		},
		[]string{"scanner", "result"},
	)

	m.ScanDurationSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: subsystemScanner,
			Name:      "scan_duration_seconds",
			Help:      "Duration of scanner runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"scanner"},
	)
}

// ObserveCrawl records one finished crawl.
func (m *Metrics) ObserveCrawl(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.CrawlsTotal.WithLabelValues(outcome).Inc()
	m.CrawlDurationSeconds.WithLabelValues(outcome).Observe(took.Seconds())
}

// AddPagesFetched counts fetched pages.
func (m *Metrics) AddPagesFetched(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PagesFetchedTotal.Add(float64(n))
}

// ObserveScan records one scanner run. err takes precedence over flagged.
func (m *Metrics) ObserveScan(scanner string, flagged bool, err error, took time.Duration) {
	if m == nil {
		return
	}

	result := ScanResultClean
	switch {
	case err != nil:
		result = ScanResultError
	case flagged:
		result = ScanResultFlagged
	}

	m.ScansTotal.WithLabelValues(scanner, result).Inc()
	m.ScanDurationSeconds.WithLabelValues(scanner).Observe(took.Seconds())
}
