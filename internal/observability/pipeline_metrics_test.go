package observability_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/aevon-lab/project-indica/internal/observability"
)

func setupPipelineMeter(t *testing.T) (*observability.PipelineMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	pm, err := observability.NewPipelineMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return pm, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for i := range rm.ScopeMetrics {
		for j := range rm.ScopeMetrics[i].Metrics {
			if rm.ScopeMetrics[i].Metrics[j].Name == name {
				return &rm.ScopeMetrics[i].Metrics[j]
			}
		}
	}
	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum data type")

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestPipelineMetrics_RecordTransform(t *testing.T) {
	t.Parallel()

	pm, reader := setupPipelineMeter(t)
	ctx := context.Background()

	pm.RecordTransform(ctx, "clinic_visits", observability.OutcomeCommitted, 3, 20*time.Millisecond)
	pm.RecordTransform(ctx, "clinic_visits", observability.OutcomeUnchanged, 0, 5*time.Millisecond)
	pm.RecordTransform(ctx, "clinic_visits", observability.OutcomeSkipped, 0, time.Millisecond)

	rm := collectMetrics(t, reader)

	assert.Equal(t, int64(3), sumOf(t, findMetric(rm, observability.MetricTransformsTotal)))
	assert.Equal(t, int64(3), sumOf(t, findMetric(rm, observability.MetricChangesTotal)))

	dur := findMetric(rm, observability.MetricTransformDuration)
	require.NotNil(t, dur)
	hist, ok := dur.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected Histogram data type")

	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestPipelineMetrics_PublishFailuresAndFeed(t *testing.T) {
	t.Parallel()

	pm, reader := setupPipelineMeter(t)
	ctx := context.Background()

	pm.RecordPublishFailure(ctx, "clinic_visits")
	pm.RecordFeedBatch(ctx, 10)
	pm.RecordFeedBatch(ctx, 0)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, observability.MetricPublishFailures)))
	assert.Equal(t, int64(10), sumOf(t, findMetric(rm, observability.MetricFeedChangesTotal)))
}

func TestPipelineMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var pm *observability.PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		pm.RecordTransform(ctx, "x", observability.OutcomeFailed, 1, time.Second)
		pm.RecordPublishFailure(ctx, "x")
		pm.RecordFeedBatch(ctx, 1)
	})
}

func TestNewPipelineMetrics_NoopMeter(t *testing.T) {
	t.Parallel()

	pm, err := observability.NewPipelineMetrics(noopmetric.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, pm)
}
