// Package metrics provides Prometheus metrics for the classification and aggregation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Summary source label values.
const (
	SourceModel    = "model"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// Pipeline holds the metrics emitted by the classification orchestrator, the risk
// aggregation engine, and the summary assembler. A nil *Pipeline is valid and records nothing.
type Pipeline struct {
	classifications    *prometheus.CounterVec
	mismatches         *prometheus.CounterVec
	classifierDuration *prometheus.HistogramVec
	batchSize          prometheus.Histogram
	aggregations       *prometheus.CounterVec
	aggregationSeconds prometheus.Histogram
	summaries          *prometheus.CounterVec
}

// NewPipeline creates the pipeline metrics and registers them with registry.
func NewPipeline(registry prometheus.Registerer) (*Pipeline, error) {
	m := &Pipeline{
		classifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspector_classifications_total",
				Help: "Findings classified, partitioned by kind and outcome.",
			},
			[]string{"kind", "status"},
		),
		mismatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspector_category_mismatches_total",
				Help: "Classifier labels outside the vocabulary, replaced with none.",
			},
			[]string{"kind"},
		),
		classifierDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "inspector_classifier_duration_seconds",
				Help:    "Time spent in the text or image classifier capability.",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"kind"},
		),
		batchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inspector_classification_batch_size",
				Help:    "Distinct findings submitted per classification batch.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
		aggregations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspector_risk_aggregations_total",
				Help: "Property risk recomputations, partitioned by outcome.",
			},
			[]string{"status"},
		),
		aggregationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "inspector_risk_aggregation_duration_seconds",
				Help:    "Time spent recomputing a property's risk under lock.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
			},
		),
		summaries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inspector_summaries_total",
				Help: "Summaries assembled, partitioned by source.",
			},
			[]string{"source"},
		),
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Pipeline) Describe(ch chan<- *prometheus.Desc) {
	m.classifications.Describe(ch)
	m.mismatches.Describe(ch)
	m.classifierDuration.Describe(ch)
	m.batchSize.Describe(ch)
	m.aggregations.Describe(ch)
	m.aggregationSeconds.Describe(ch)
	m.summaries.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Pipeline) Collect(ch chan<- prometheus.Metric) {
	m.classifications.Collect(ch)
	m.mismatches.Collect(ch)
	m.classifierDuration.Collect(ch)
	m.batchSize.Collect(ch)
	m.aggregations.Collect(ch)
	m.aggregationSeconds.Collect(ch)
	m.summaries.Collect(ch)
}

// ObserveClassification records the outcome of classifying one finding.
func (m *Pipeline) ObserveClassification(kind, status string) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(kind, status).Inc()
}

// ObserveMismatch records a label replaced with none.
func (m *Pipeline) ObserveMismatch(kind string) {
	if m == nil {
		return
	}
	m.mismatches.WithLabelValues(kind).Inc()
}

// ObserveClassifier records the latency of one classifier call.
func (m *Pipeline) ObserveClassifier(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.classifierDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveBatch records the number of distinct findings in a batch.
func (m *Pipeline) ObserveBatch(size int) {
	if m == nil {
		return
	}
	m.batchSize.Observe(float64(size))
}

// ObserveAggregation records one risk recomputation.
func (m *Pipeline) ObserveAggregation(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(status).Inc()
	m.aggregationSeconds.Observe(d.Seconds())
}

// ObserveSummary records where a persisted summary came from.
func (m *Pipeline) ObserveSummary(source string) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(source).Inc()
}
