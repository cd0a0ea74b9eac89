package matcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"framematch/logging"
	"framematch/types"

	"golang.org/x/sync/errgroup"
)

// Sink consumes match decisions, e.g. by copying the matched file
type Sink interface {
	Consume(ctx context.Context, result types.MatchResult) error
}

// Options configures an Orchestrator
type Options struct {
	Workers int       // input frames processed at once
	Status  io.Writer // per-frame announcements; nil discards them
}

// Summary describes a finished (or cancelled) matching run
type Summary struct {
	Inputs            int
	Matched           int
	SelectionFailures int
	SinkFailures      int
	Mismatches        int
	Failures          []error
	Elapsed           time.Duration
}

// Orchestrator runs the selector over every input frame and feeds the sink
type Orchestrator struct {
	selector *Selector
	sink     Sink
	workers  int
	status   io.Writer
	statusMu sync.Mutex
}

// NewOrchestrator wires a selector to a sink
func NewOrchestrator(selector *Selector, sink Sink, opts Options) *Orchestrator {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	status := opts.Status
	if status == nil {
		status = io.Discard
	}
	return &Orchestrator{selector: selector, sink: sink, workers: workers, status: status}
}

// SplitWorkers divides a worker budget between input frames (outer) and pool
// comparisons for each frame (inner)
func SplitWorkers(total, inputs int) (outer, inner int) {
	if total < 1 {
		total = 1
	}
	if inputs < 1 {
		inputs = 1
	}
	outer = min(total, inputs)
	inner = max(1, total/outer)
	return outer, inner
}

func (o *Orchestrator) announce(format string, args ...interface{}) {
	o.statusMu.Lock()
	defer o.statusMu.Unlock()
	fmt.Fprintf(o.status, format, args...)
}

// Run matches every input frame against the pool. Selection and sink failures
// are per frame and do not stop the other frames. An empty pool fails the run
// before anything reaches the sink. Cancelling ctx drops frames not yet started
// and returns an error wrapping ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, inputs, pool *types.ImageSet) (Summary, error) {
	startTime := time.Now()
	summary := Summary{Inputs: inputs.Len()}

	if pool.Len() == 0 {
		if inputs.Len() == 0 {
			return summary, ErrEmptyPool
		}
		errs := make([]error, 0, inputs.Len())
		for _, frame := range inputs.Frames {
			err := fmt.Errorf("match %s: %w", frame.ID.Name, ErrEmptyPool)
			logging.LogError("%v", err)
			errs = append(errs, err)
		}
		summary.SelectionFailures = len(errs)
		summary.Failures = errs
		return summary, errors.Join(errs...)
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.workers)

	for _, frame := range inputs.Frames {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}
			o.announce("Matching %s\n", frame.ID.Name)

			sel, err := o.selector.Select(groupCtx, frame, pool)
			for _, mismatch := range sel.Mismatches {
				logging.LogError("%v", mismatch)
			}
			for _, failure := range sel.Failures {
				logging.LogError("%v", failure)
			}

			mu.Lock()
			summary.Mismatches += len(sel.Mismatches)
			mu.Unlock()

			if err != nil {
				if ctxErr := groupCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				logging.LogError("Selection failed for %s: %v", frame.ID.Path(), err)
				mu.Lock()
				summary.SelectionFailures++
				summary.Failures = append(summary.Failures, err)
				mu.Unlock()
				return nil
			}

			result := types.MatchResult{Source: frame.ID, Match: sel.Match, Score: sel.Score}
			logging.DebugLog("Best match for %s is %s (score %.6f over %d frames)",
				frame.ID.Name, sel.Match.Name, sel.Score, sel.Compared)

			if err := o.sink.Consume(groupCtx, result); err != nil {
				if ctxErr := groupCtx.Err(); ctxErr != nil {
					return ctxErr
				}
				err = fmt.Errorf("output %s: %w", frame.ID.Name, err)
				logging.LogError("%v", err)
				mu.Lock()
				summary.SinkFailures++
				summary.Failures = append(summary.Failures, err)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			summary.Matched++
			mu.Unlock()
			return nil
		})
	}

	waitErr := group.Wait()
	summary.Elapsed = time.Since(startTime)
	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Error() < summary.Failures[j].Error()
	})

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("matching stopped after %d of %d frames: %w", summary.Matched, summary.Inputs, err)
	}
	if waitErr != nil {
		return summary, waitErr
	}
	return summary, nil
}
