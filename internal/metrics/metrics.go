package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "court_docket"

var (
	once sync.Once

	conflictScans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflict_scans_total",
			Help:      "Count of hearing conflict scans by outcome (clear, conflict, error).",
		},
		[]string{"result"},
	)

	conflictsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_detected_total",
			Help:      "Count of conflicting hearings reported by scans.",
		},
	)

	conflictScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conflict_scan_duration_seconds",
			Help:      "Duration of hearing conflict scans including case enrichment.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	conflictOverrides = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflict_overrides_total",
			Help:      "Count of hearings saved despite conflicts through an override.",
		},
	)

	caseLookupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "case_lookup_failures_total",
			Help:      "Count of case lookups that failed while enriching a conflict report.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(conflictScans, conflictsDetected, conflictScanDuration, conflictOverrides, caseLookupFailures)
	})
}

// ObserveConflictScan records one finished scan.
func ObserveConflictScan(result string, found int, took time.Duration) {
	conflictScans.WithLabelValues(result).Inc()
	conflictsDetected.Add(float64(found))
	conflictScanDuration.Observe(took.Seconds())
}

func IncConflictOverride() {
	conflictOverrides.Inc()
}

func IncCaseLookupFailure() {
	caseLookupFailures.Inc()
}
