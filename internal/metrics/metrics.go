// Package metrics exposes Prometheus collectors for the quotesync service.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	harvestPagesTotal       prometheus.Counter
	harvestQuotesTotal      prometheus.Counter
	harvestDetailSkipsTotal prometheus.Counter
	syncRowsTotal           *prometheus.CounterVec
	syncRecordSkipsTotal    prometheus.Counter
	cyclesTotal             *prometheus.CounterVec
	cycleDurationSeconds    prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		harvestPagesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "quotesync_harvest_pages_total",
				Help: "Total number of listing pages fetched.",
			},
		)

		harvestQuotesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "quotesync_harvest_quotes_total",
				Help: "Total number of quote records assembled during harvests.",
			},
		)

		harvestDetailSkipsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "quotesync_harvest_detail_skips_total",
				Help: "Total number of listing items skipped because author detail was unavailable.",
			},
		)

		syncRowsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quotesync_sync_rows_total",
				Help: "Total number of rows upserted, labeled by entity.",
			},
			[]string{"entity"},
		)

		syncRecordSkipsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "quotesync_sync_record_skips_total",
				Help: "Total number of records skipped during synchronization.",
			},
		)

		cyclesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quotesync_cycles_total",
				Help: "Total number of synchronization cycles, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		cycleDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quotesync_cycle_duration_seconds",
				Help:    "Histogram of full synchronization cycle durations.",
				Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHarvest records the outcome of one crawl run.
func ObserveHarvest(pages, quotes, detailSkips int) {
	harvestPagesTotal.Add(float64(pages))
	harvestQuotesTotal.Add(float64(quotes))
	if detailSkips > 0 {
		harvestDetailSkipsTotal.Add(float64(detailSkips))
	}
}

// ObserveSyncRows adds to the per-entity upsert counter.
func ObserveSyncRows(entity string, rows int) {
	if rows > 0 {
		syncRowsTotal.WithLabelValues(entity).Add(float64(rows))
	}
}

// ObserveSyncRecordSkips counts records dropped during a sync.
func ObserveSyncRecordSkips(skips int) {
	if skips > 0 {
		syncRecordSkipsTotal.Add(float64(skips))
	}
}

// ObserveCycle records one completed cycle with its outcome and duration.
func ObserveCycle(outcome string, duration time.Duration) {
	cyclesTotal.WithLabelValues(outcome).Inc()
	cycleDurationSeconds.Observe(duration.Seconds())
}
