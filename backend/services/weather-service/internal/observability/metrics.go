package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather"

// Metrics holds the Prometheus collectors for ingestion, queue consumption and exports.
type Metrics struct {
	LogsIngested   prometheus.Counter
	IngestRejected *prometheus.CounterVec // labels: reason={validation,store}

	QueueMessages *prometheus.CounterVec // labels: source, outcome={ingested,invalid,failed}

	Exports        *prometheus.CounterVec   // labels: format={csv,xlsx}, outcome={ok,empty,error}
	ExportDuration *prometheus.HistogramVec // labels: format
	ExportRows     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg. A nil registerer
// leaves them unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LogsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logs_ingested_total",
			Help:      "Weather logs written to the record store.",
		}),
		IngestRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logs_rejected_total",
			Help:      "Readings rejected at ingestion, by reason.",
		}, []string{"reason"}),
		QueueMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_messages_total",
			Help:      "Collector messages consumed by the ingestion worker.",
		}, []string{"source", "outcome"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Export requests by format and outcome.",
		}, []string{"format", "outcome"}),
		ExportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time spent serializing an export.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}, []string{"format"}),
		ExportRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_rows",
			Help:      "Number of records per export.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.LogsIngested,
			m.IngestRejected,
			m.QueueMessages,
			m.Exports,
			m.ExportDuration,
			m.ExportRows,
		)
	}
	return m
}
