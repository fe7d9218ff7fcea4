package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/inspector/internal/metrics"
)

func TestNewPipelineRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewPipeline(reg)
	require.NoError(t, err)

	m.ObserveClassification("text", metrics.StatusSuccess)
	m.ObserveClassification("text", metrics.StatusSuccess)
	m.ObserveClassification("image", metrics.StatusFailure)
	m.ObserveMismatch("image")
	m.ObserveClassifier("text", 120*time.Millisecond)
	m.ObserveBatch(5)
	m.ObserveAggregation(metrics.StatusSuccess, 3*time.Millisecond)
	m.ObserveSummary(metrics.SourceFallback)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "inspector_classifications_total")
	assert.Contains(t, names, "inspector_summaries_total")
	assert.Contains(t, names, "inspector_risk_aggregation_duration_seconds")
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewPipeline(reg)
	require.NoError(t, err)

	_, err = metrics.NewPipeline(reg)
	assert.Error(t, err)
}

func TestNilPipelineIsNoop(t *testing.T) {
	var m *metrics.Pipeline
	assert.NotPanics(t, func() {
		m.ObserveClassification("text", metrics.StatusSuccess)
		m.ObserveMismatch("text")
		m.ObserveClassifier("text", time.Second)
		m.ObserveBatch(1)
		m.ObserveAggregation(metrics.StatusFailure, time.Second)
		m.ObserveSummary(metrics.SourceModel)
	})
}

func TestCounterValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewPipeline(reg)
	require.NoError(t, err)

	m.ObserveSummary(metrics.SourceFallback)
	m.ObserveSummary(metrics.SourceFallback)
	m.ObserveSummary(metrics.SourceModel)

	count, err := testutil.GatherAndCount(reg, "inspector_summaries_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
