// Package publish delivers diff reports to downstream subscribers.
package publish

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aevon-lab/project-indica/internal/core/indicator"
)

// Publisher delivers a diff report for the indicator document docID.
type Publisher interface {
	Publish(ctx context.Context, docID string, report *indicator.Report) error
}

// LogPublisher writes each report to the process logger.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, docID string, report *indicator.Report) error {
	changed := make([]string, 0, len(report.IndicatorChanges))
	for _, c := range report.IndicatorChanges {
		changed = append(changed, c.Calculator+"."+c.Emitter)
	}
	p.logger.InfoContext(ctx, "[Publisher] Indicator changed",
		"doc_id", docID,
		"indicator", report.DocType,
		"database", report.Database,
		"group_values", report.GroupValues,
		"changed", changed,
	)
	return nil
}

// Fanout publishes every report to each of its publishers and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, docID string, report *indicator.Report) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, docID, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
