package pipeline

import (
	"context"
	"sync"

	"github.com/eps-fdir/epsfdir/internal/model"
	"golang.org/x/sync/errgroup"
)

// orderedEmitter forwards results to the progress callback in step order
// while steps complete in any order.
type orderedEmitter struct {
	mu   sync.Mutex
	done []bool
	res  []model.ChartResult
	next int
	emit func(model.ChartResult)
}

func newOrderedEmitter(n int, emit func(model.ChartResult)) *orderedEmitter {
	return &orderedEmitter{
		done: make([]bool, n),
		res:  make([]model.ChartResult, n),
		emit: emit,
	}
}

// complete records result i and flushes every result that is now
// contiguous with the already emitted prefix.
func (o *orderedEmitter) complete(i int, r model.ChartResult) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.res[i] = r
	o.done[i] = true
	for o.next < len(o.done) && o.done[o.next] {
		o.emit(o.res[o.next])
		o.next++
	}
}

// executeBatch renders up to p.concurrency steps at once.
//
// errgroup.SetLimit bounds the number of rendering goroutines. A failed
// step is only returned to the errgroup when the pipeline stops on error;
// the group context is then cancelled and steps that have not started are
// recorded as cancelled. Steps already rendering complete normally.
func (p *Pipeline) executeBatch(ctx context.Context, report *model.RunReport) {
	emitter := newOrderedEmitter(len(p.steps), p.emit)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, step := range p.steps {
		g.Go(func() error {
			// Check for cancellation before starting
			if gctx.Err() != nil {
				reason := ctx.Err()
				if reason == nil {
					reason = ErrSkipped
				}
				result := cancelled(step, reason)
				p.logger.Warn("step cancelled", "step", step.Name(), "reason", reason)
				report.Charts[i] = result
				emitter.complete(i, result)
				return nil
			}

			result := p.run(gctx, step)
			report.Charts[i] = result
			emitter.complete(i, result)

			if result.Status == model.StatusFailed && !p.continueOnError {
				return result.Err
			}
			return nil
		})
	}

	// Failures are recorded in the report; the group error only served
	// to cancel the remaining steps.
	_ = g.Wait() //nolint:errcheck // Errors are recorded per step
}
