package matcher

import (
	"context"
	"errors"
	"fmt"

	"framematch/imageprocessor"
	"framematch/types"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrEmptyPool is returned when there is no pool frame to match against
	ErrEmptyPool = errors.New("frame pool is empty")
	// ErrNoComparableFrame is returned when every pool frame failed to compare
	ErrNoComparableFrame = errors.New("no pool frame could be compared")
)

// Selection is the outcome of one best-match search
type Selection struct {
	Match      types.Identity
	Score      float64
	Compared   int     // pool frames scored successfully
	Mismatches []error // *DimensionMismatchError per skipped pair, in pool order
	Failures   []error // other per-pair comparison failures, in pool order
}

// Selector finds the best pool frame for a single source frame
type Selector struct {
	evaluator  *imageprocessor.Evaluator
	comparator Comparator
	workers    int
}

// NewSelector creates a selector that spreads each search over up to workers goroutines
func NewSelector(evaluator *imageprocessor.Evaluator, comparator Comparator, workers int) *Selector {
	if workers < 1 {
		workers = 1
	}
	return &Selector{evaluator: evaluator, comparator: comparator, workers: workers}
}

// Comparator returns the selection policy in use
func (s *Selector) Comparator() Comparator {
	return s.comparator
}

// chunkResult is the local best and the failures of one contiguous pool slice
type chunkResult struct {
	best       candidate
	compared   int
	mismatches []error
	failures   []error
}

// Select scores source against every pool frame and returns the best one.
// Pairs that cannot be compared are skipped and listed in Selection.Mismatches
// (different dimensions) or Selection.Failures;
// if none can be compared the error wraps ErrNoComparableFrame.
func (s *Selector) Select(ctx context.Context, source types.Frame, pool *types.ImageSet) (Selection, error) {
	n := pool.Len()
	if n == 0 {
		return Selection{}, fmt.Errorf("match %s: %w", source.ID.Name, ErrEmptyPool)
	}

	chunks := min(s.workers, n)
	chunkSize := (n + chunks - 1) / chunks
	results := make([]chunkResult, chunks)

	group, groupCtx := errgroup.WithContext(ctx)
	for c := 0; c < chunks; c++ {
		start := c * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			results[c].best = noCandidate
			continue
		}
		group.Go(func() error {
			local := chunkResult{best: noCandidate}
			for i := start; i < end; i++ {
				// Comparisons already running finish; the rest are dropped
				if err := groupCtx.Err(); err != nil {
					return err
				}
				frame := pool.Frames[i]
				score, err := s.evaluator.Compare(source, frame)
				if err != nil {
					var mismatch *imageprocessor.DimensionMismatchError
					if errors.As(err, &mismatch) {
						local.mismatches = append(local.mismatches, err)
					} else {
						local.failures = append(local.failures, err)
					}
					continue
				}
				local.compared++
				cand := candidate{index: i, path: frame.ID.Path(), score: score}
				if s.comparator.better(cand, local.best) {
					local.best = cand
				}
			}
			results[c] = local
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Selection{}, fmt.Errorf("match %s: %w", source.ID.Name, err)
	}

	sel := Selection{}
	partial := make([]candidate, 0, chunks)
	for _, r := range results {
		partial = append(partial, r.best)
		sel.Compared += r.compared
		sel.Mismatches = append(sel.Mismatches, r.mismatches...)
		sel.Failures = append(sel.Failures, r.failures...)
	}

	best := s.comparator.reduce(partial...)
	if best.index < 0 {
		cause := fmt.Errorf("match %s: %w", source.ID.Name, ErrNoComparableFrame)
		errs := append([]error{cause}, sel.Mismatches...)
		return sel, errors.Join(append(errs, sel.Failures...)...)
	}

	sel.Match = pool.Frames[best.index].ID
	sel.Score = best.score
	return sel, nil
}
