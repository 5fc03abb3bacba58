package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aevon-lab/project-indica/internal/core/storage"
	"github.com/aevon-lab/project-indica/internal/observability"
)

const (
	defaultBatchSize      = 1000
	maxConsecutiveBatches = 100
	finalDrainTimeout     = 30 * time.Second
)

// SchedulerConfig controls how the change log is drained.
type SchedulerConfig struct {
	Feed      string
	Interval  time.Duration
	BatchSize int
}

func (c SchedulerConfig) normalized() SchedulerConfig {
	n := c
	if n.Feed == "" {
		n.Feed = "indicators"
	}
	if n.Interval <= 0 {
		n.Interval = 30 * time.Second
	}
	if n.BatchSize <= 0 {
		n.BatchSize = defaultBatchSize
	}
	return n
}

// Scheduler periodically drains the change log through a Dispatcher. The feed
// checkpoint only advances past a batch once every change in it was handled,
// so a failed batch is retried from the same cursor on the next tick.
type Scheduler struct {
	cfg         SchedulerConfig
	changes     storage.ChangeLog
	checkpoints storage.CheckpointStore
	dispatcher  *Dispatcher
	metrics     *observability.PipelineMetrics
	wake        chan struct{}
}

func NewScheduler(
	cfg SchedulerConfig,
	changes storage.ChangeLog,
	checkpoints storage.CheckpointStore,
	dispatcher *Dispatcher,
	metrics *observability.PipelineMetrics,
) *Scheduler {
	return &Scheduler{
		cfg:         cfg.normalized(),
		changes:     changes,
		checkpoints: checkpoints,
		dispatcher:  dispatcher,
		metrics:     metrics,
		wake:        make(chan struct{}, 1),
	}
}

// Notify asks the scheduler to drain before the next tick. It never blocks.
func (s *Scheduler) Notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Start drains the change log every interval until ctx is cancelled, then runs
// a final bounded drain.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	slog.Info("[Scheduler] Starting change log scheduler",
		"feed", s.cfg.Feed,
		"interval", s.cfg.Interval,
		"batch_size", s.cfg.BatchSize,
		"workers", s.dispatcher.workers,
	)

	s.drainBacklog(ctx)

	for {
		select {
		case <-ticker.C:
			s.drainBacklog(ctx)
		case <-s.wake:
			s.drainBacklog(ctx)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)", "feed", s.cfg.Feed)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), finalDrainTimeout)
			defer cancel()

			slog.Info("[Scheduler] Running final drain before shutdown...", "feed", s.cfg.Feed)
			s.drainBacklog(shutdownCtx)
			slog.Info("[Scheduler] Final drain complete", "feed", s.cfg.Feed)
			return nil
		}
	}
}

// RunOnce handles one batch after the checkpoint and returns how many changes it held.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	cursor, err := s.checkpoints.ReadCheckpoint(ctx, s.cfg.Feed)
	if err != nil {
		return 0, fmt.Errorf("read checkpoint: %w", err)
	}

	events, err := s.changes.RetrieveChangesAfterCursor(ctx, cursor, s.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("query changes: %w", err)
	}
	if len(events) == 0 {
		slog.Debug("[Scheduler] No new changes", "feed", s.cfg.Feed)
		return 0, nil
	}

	if err := s.dispatcher.Dispatch(ctx, events); err != nil {
		return 0, fmt.Errorf("dispatch changes after cursor %d: %w", cursor, err)
	}

	newCursor := events[len(events)-1].IngestSeq
	if err := s.checkpoints.WriteCheckpoint(ctx, s.cfg.Feed, newCursor); err != nil {
		return 0, fmt.Errorf("write checkpoint: %w", err)
	}
	s.metrics.RecordFeedBatch(ctx, len(events))

	slog.Info("[Scheduler] Batch complete",
		"feed", s.cfg.Feed,
		"changes_processed", len(events),
		"cursor_advanced", fmt.Sprintf("%d -> %d", cursor, newCursor),
	)
	return len(events), nil
}

// drainBacklog runs batches until one comes back short, bounded by
// maxConsecutiveBatches so a busy log cannot starve shutdown.
func (s *Scheduler) drainBacklog(ctx context.Context) {
	batchCount := 0
	for batchCount < maxConsecutiveBatches {
		if ctx.Err() != nil {
			slog.Info("[Scheduler] Drain interrupted by context cancellation",
				"feed", s.cfg.Feed,
				"batches_processed", batchCount,
			)
			return
		}

		processed, err := s.RunOnce(ctx)
		if err != nil {
			slog.Error("[Scheduler] Batch failed",
				"error", err,
				"feed", s.cfg.Feed,
				"batch_number", batchCount+1,
			)
			return
		}
		batchCount++

		if processed < s.cfg.BatchSize {
			if batchCount > 1 {
				slog.Info("[Scheduler] Backlog drained", "feed", s.cfg.Feed, "total_batches", batchCount)
			}
			return
		}

		slog.Info("[Scheduler] Backlog detected, continuing to drain",
			"feed", s.cfg.Feed,
			"batches_so_far", batchCount,
		)
	}

	slog.Warn("[Scheduler] Max consecutive batches reached, pausing drain",
		"feed", s.cfg.Feed,
		"max_batches", maxConsecutiveBatches,
		"note", "Will resume on next tick",
	)
}
