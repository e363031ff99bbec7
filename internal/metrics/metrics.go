// Package metrics provides Prometheus metrics for the sync, cache, and
// migration paths.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// syncOperationsTotal counts remote store calls.
	// Labels:
	//   - op: fetch, upsert, delete, favorite
	//   - status: success, failed
	syncOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptvault_sync_operations_total",
			Help: "Total number of remote store operations",
		},
		[]string{"op", "status"},
	)

	remoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "promptvault_remote_duration_seconds",
			Help:    "Duration of remote store operations in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	// cacheWritesTotal counts local cache writes by outcome
	// (saved, skipped, cleared, failed).
	cacheWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptvault_cache_writes_total",
			Help: "Total number of local cache writes by outcome",
		},
		[]string{"status"},
	)

	migratedRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptvault_migrated_records_total",
			Help: "Total number of records pushed by cache migration",
		},
		[]string{"status"},
	)

	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptvault_exports_total",
			Help: "Total number of document exports by format",
		},
		[]string{"format", "status"},
	)
)

func init() {
	prometheus.MustRegister(syncOperationsTotal)
	prometheus.MustRegister(remoteDuration)
	prometheus.MustRegister(cacheWritesTotal)
	prometheus.MustRegister(migratedRecordsTotal)
	prometheus.MustRegister(exportsTotal)
}

// RecordRemote records the outcome and duration of a remote store call.
func RecordRemote(op string, err error, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	syncOperationsTotal.WithLabelValues(op, status).Inc()
	remoteDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RecordCacheWrite records a local cache write outcome.
func RecordCacheWrite(status string) {
	cacheWritesTotal.WithLabelValues(status).Inc()
}

// RecordMigration records the per-record tallies of a migration run.
func RecordMigration(succeeded, failed int) {
	migratedRecordsTotal.WithLabelValues("success").Add(float64(succeeded))
	migratedRecordsTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordExport records a document export.
func RecordExport(format string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	exportsTotal.WithLabelValues(format, status).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
