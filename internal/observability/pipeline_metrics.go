package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	MetricTransformsTotal   = "indica.pipeline.transforms.total"
	MetricChangesTotal      = "indica.pipeline.changes.total"
	MetricTransformDuration = "indica.pipeline.transform.duration.seconds"
	MetricPublishFailures   = "indica.publish.failures.total"
	MetricFeedChangesTotal  = "indica.feed.changes.total"

	attrOutcome   = "outcome"
	attrIndicator = "indicator"
)

// Transform outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeUnchanged = "unchanged"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// transforms are dominated by one store read and one store write.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// PipelineMetrics holds the instruments of the change-transform pipeline.
// A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	transforms      metric.Int64Counter
	changes         metric.Int64Counter
	duration        metric.Float64Histogram
	publishFailures metric.Int64Counter
	feedChanges     metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments from mt.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	b := newMetricBuilder(mt)

	pm := &PipelineMetrics{
		transforms:      b.counter(MetricTransformsTotal, "Source changes transformed per indicator type", "{transform}"),
		changes:         b.counter(MetricChangesTotal, "Indicator changes reported in diffs", "{change}"),
		duration:        b.histogram(MetricTransformDuration, "Transform duration in seconds", "s", durationBucketBoundaries...),
		publishFailures: b.counter(MetricPublishFailures, "Diff reports that could not be published", "{report}"),
		feedChanges:     b.counter(MetricFeedChangesTotal, "Changes drained from the change log", "{change}"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return pm, nil
}

// RecordTransform records one transform of a source change into an indicator type.
func (pm *PipelineMetrics) RecordTransform(ctx context.Context, indicator, outcome string, changes int, d time.Duration) {
	if pm == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String(attrIndicator, indicator),
		attribute.String(attrOutcome, outcome),
	)
	pm.transforms.Add(ctx, 1, attrs)
	pm.duration.Record(ctx, d.Seconds(), attrs)
	if changes > 0 {
		pm.changes.Add(ctx, int64(changes), metric.WithAttributes(attribute.String(attrIndicator, indicator)))
	}
}

func (pm *PipelineMetrics) RecordPublishFailure(ctx context.Context, indicator string) {
	if pm == nil {
		return
	}
	pm.publishFailures.Add(ctx, 1, metric.WithAttributes(attribute.String(attrIndicator, indicator)))
}

func (pm *PipelineMetrics) RecordFeedBatch(ctx context.Context, n int) {
	if pm == nil || n <= 0 {
		return
	}
	pm.feedChanges.Add(ctx, int64(n))
}
