// Package pipeline turns source document changes into saved indicator documents
// and diff reports.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
	"github.com/aevon-lab/project-indica/internal/core/indicator"
	"github.com/aevon-lab/project-indica/internal/core/partition"
	"github.com/aevon-lab/project-indica/internal/core/storage"
	"github.com/aevon-lab/project-indica/internal/observability"
	"github.com/aevon-lab/project-indica/internal/publish"
)

// CommitResult is the outcome of transforming one change into one indicator type.
type CommitResult struct {
	IndicatorType string            `json:"indicator_type"`
	DocumentID    string            `json:"document_id,omitempty"`
	Skipped       bool              `json:"skipped"`
	Diff          *indicator.Report `json:"diff"`
}

// Handler processes a single change event.
type Handler func(ctx context.Context, evt *v1.ChangeEvent) error

// Pipeline recomputes indicator documents for incoming changes. Changes to the
// same source identity are serialized; different identities run in parallel.
type Pipeline struct {
	registry  *indicator.Registry
	store     storage.IndicatorStore
	publisher publish.Publisher
	metrics   *observability.PipelineMetrics

	locks [partition.Count]sync.Mutex
}

type Option func(*Pipeline)

func WithMetrics(pm *observability.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = pm }
}

func New(registry *indicator.Registry, store storage.IndicatorStore, publisher publish.Publisher, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:  registry,
		store:     store,
		publisher: publisher,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Transform runs the change through every indicator type observing its document.
// Types are independent: a failure in one does not stop the others, and all
// failures are returned joined.
func (p *Pipeline) Transform(ctx context.Context, evt *v1.ChangeEvent) ([]CommitResult, error) {
	if err := evt.Validate(); err != nil {
		return nil, fmt.Errorf("invalid change %s: %w", evt.ID, err)
	}

	mu := &p.locks[partition.For(evt.Document.ID)]
	mu.Lock()
	defer mu.Unlock()

	var (
		results []CommitResult
		errs    []error
	)
	for _, t := range p.registry.ForSource(evt.Document.DocType) {
		if !t.Observes(evt.Document.DocType, evt.Document.Domain) {
			continue
		}
		res, err := p.transformFor(ctx, t, evt)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// TransformFor runs the change through a single indicator type.
func (p *Pipeline) TransformFor(ctx context.Context, t *indicator.Type, evt *v1.ChangeEvent) (CommitResult, error) {
	mu := &p.locks[partition.For(evt.Document.ID)]
	mu.Lock()
	defer mu.Unlock()
	return p.transformFor(ctx, t, evt)
}

func (p *Pipeline) transformFor(ctx context.Context, t *indicator.Type, evt *v1.ChangeEvent) (res CommitResult, err error) {
	start := time.Now()
	res = CommitResult{IndicatorType: t.Name()}
	defer func() {
		outcome := observability.OutcomeCommitted
		changes := 0
		switch {
		case err != nil:
			outcome = observability.OutcomeFailed
		case res.Skipped:
			outcome = observability.OutcomeSkipped
		case res.Diff == nil:
			outcome = observability.OutcomeUnchanged
		default:
			changes = len(res.Diff.IndicatorChanges)
		}
		p.metrics.RecordTransform(ctx, t.Name(), outcome, changes, time.Since(start))
	}()

	view := indicator.ViewOf(evt.Document)
	pass, err := t.PassesDocumentFilter(view)
	if err != nil {
		return res, fmt.Errorf("indicator %s: document filter: %w", t.Name(), err)
	}
	if !pass {
		slog.Debug("[Pipeline] Change filtered out", "indicator", t.Name(), "source_id", view.ID())
		res.Skipped = true
		return res, nil
	}

	res.DocumentID = t.DocumentID(view.ID())
	previous, err := p.store.GetIndicator(ctx, res.DocumentID)
	if errors.Is(err, storage.ErrNotFound) {
		previous, err = nil, nil
	}
	if err != nil {
		return res, fmt.Errorf("load indicator %s: %w", res.DocumentID, err)
	}

	next, err := t.Calculate(view)
	if err != nil {
		return res, err
	}

	if err := p.store.SaveIndicator(ctx, next); err != nil {
		return res, fmt.Errorf("save indicator %s: %w", res.DocumentID, err)
	}

	res.Diff = t.Diff(next, previous)
	if res.Diff == nil {
		slog.Debug("[Pipeline] Indicator unchanged", "indicator", t.Name(), "doc_id", res.DocumentID)
		return res, nil
	}

	if err := p.publisher.Publish(ctx, res.DocumentID, res.Diff); err != nil {
		// The document is already saved; a lost notification must not replay the change.
		slog.Error("[Pipeline] Failed to publish diff",
			"indicator", t.Name(),
			"doc_id", res.DocumentID,
			"error", err,
		)
		p.metrics.RecordPublishFailure(ctx, t.Name())
	}
	return res, nil
}

// Handle is the Handler used by change feeds. Definition and validation errors
// cannot succeed on retry, so they are logged and the change is dropped; any
// other error is returned so the feed redelivers the change.
func (p *Pipeline) Handle(ctx context.Context, evt *v1.ChangeEvent) error {
	_, err := p.Transform(ctx, evt)
	if err == nil {
		return nil
	}
	if IsPermanent(err) {
		slog.Error("[Pipeline] Dropping change that cannot be transformed",
			"change_id", evt.ID,
			"source_id", evt.Document.ID,
			"doc_type", evt.Document.DocType,
			"error", err,
		)
		return nil
	}
	return err
}

var permanentErrors = []error{
	indicator.ErrInvalidEmittedValue,
	indicator.ErrInvalidWindowConfiguration,
	indicator.ErrEmitterType,
	indicator.ErrInvalidGroupByType,
	indicator.ErrInvalidGroupValue,
	indicator.ErrInvalidDefinition,
	indicator.ErrCorruptIdentifier,
	v1.ErrInvalidChange,
}

// IsPermanent reports whether err is a definition or data error that retrying
// cannot fix. Joined errors are permanent only if every part is.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if !IsPermanent(e) {
				return false
			}
		}
		return true
	}
	for _, target := range permanentErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
