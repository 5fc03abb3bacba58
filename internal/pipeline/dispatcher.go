package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
	"github.com/aevon-lab/project-indica/internal/core/partition"
)

const defaultWorkerCount = 8

// Dispatcher fans a batch of changes out to workers. Every change for one source
// identity goes to the same worker and is handled in batch order, so the diff of
// each change is taken against the result of the one before it.
type Dispatcher struct {
	workers int
	handle  Handler
}

func NewDispatcher(workers int, handle Handler) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	return &Dispatcher{workers: workers, handle: handle}
}

// Dispatch handles every change in events and waits for all workers. The first
// failure cancels the remaining work and is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, events []*v1.ChangeEvent) error {
	lanes := make([][]*v1.ChangeEvent, d.workers)
	for _, evt := range events {
		w := partition.Worker(evt.Document.ID, d.workers)
		lanes[w] = append(lanes[w], evt)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, lane := range lanes {
		if len(lane) == 0 {
			continue
		}
		g.Go(func() error {
			for _, evt := range lane {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := d.handle(gctx, evt); err != nil {
					return fmt.Errorf("change %s (source %s): %w", evt.ID, evt.Document.ID, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}
