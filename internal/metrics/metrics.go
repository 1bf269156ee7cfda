package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels successful analyses.
	OutcomeSuccess = "success"
	// OutcomeError labels failed analyses.
	OutcomeError = "error"

	// Operation labels for the analysis counter.
	OpCorrelations = "correlations"
	OpImpact       = "impact"
	OpPatterns     = "patterns"
	OpCascade      = "cascade"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphsight",
			Name:      "analyses_total",
			Help:      "Total number of analyses handled, partitioned by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "graphsight",
			Name:      "analysis_seconds",
			Help:      "Analysis latency in seconds, partitioned by operation.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"operation"},
	)

	snapshotSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "graphsight",
			Name:      "store_size",
			Help:      "Current store contents by kind (items, relationships, events).",
		},
		[]string{"kind"},
	)
)

// Register attaches graphsight collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		snapshotSize,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and outcome for an operation.
func ObserveAnalysis(operation string, duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(operation, label).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetStoreSize updates the store-size gauges.
func SetStoreSize(items, relationships, events int) {
	snapshotSize.WithLabelValues("items").Set(float64(items))
	snapshotSize.WithLabelValues("relationships").Set(float64(relationships))
	snapshotSize.WithLabelValues("events").Set(float64(events))
}
