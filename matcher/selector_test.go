package matcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"framematch/imageprocessor"
	"framematch/testsupport"
	"framematch/types"
)

func newSelector(t *testing.T, metric imageprocessor.Metric, cmp Comparator, workers int) *Selector {
	t.Helper()
	eval, err := imageprocessor.NewEvaluator(metric)
	if err != nil {
		t.Fatalf("NewEvaluator returned error: %v", err)
	}
	return NewSelector(eval, cmp, workers)
}

func TestSelectBlackMatchesBlack(t *testing.T) {
	source := testsupport.Frame("in", "a.png", testsupport.SolidGray(16, 16, 0))
	pool := &types.ImageSet{Frames: []types.Frame{
		testsupport.Frame("pool", "c.png", testsupport.SolidGray(16, 16, 255)),
		testsupport.Frame("pool", "b.png", testsupport.SolidGray(16, 16, 0)),
	}}

	sel, err := newSelector(t, imageprocessor.MetricSSIM, MaximizeScore, 2).Select(context.Background(), source, pool)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if sel.Match.Name != "b.png" {
		t.Fatalf("expected b.png, got %s", sel.Match.Name)
	}
	if sel.Score < 0.999 {
		t.Fatalf("expected near-maximal score, got %v", sel.Score)
	}
	if sel.Compared != 2 || len(sel.Mismatches) != 0 {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestSelectEmptyPool(t *testing.T) {
	source := testsupport.Frame("in", "x.png", testsupport.SolidGray(4, 4, 0))
	_, err := newSelector(t, imageprocessor.MetricSSIM, MaximizeScore, 1).Select(context.Background(), source, &types.ImageSet{})
	if !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
}

func TestSelectReturnsPoolMemberForAnyWorkerCount(t *testing.T) {
	source := testsupport.Frame("in", "src.png", testsupport.Gradient(24, 24, 17))
	pool := &types.ImageSet{}
	for i := 0; i < 23; i++ {
		pool.Frames = append(pool.Frames,
			testsupport.Frame("pool", fmt.Sprintf("p%02d.png", i), testsupport.Gradient(24, 24, uint8(i*11))))
	}

	var first types.Identity
	for _, workers := range []int{1, 2, 3, 7, 23, 64} {
		for _, cmp := range []Comparator{MaximizeScore, MaximizeAbsScore} {
			sel, err := newSelector(t, imageprocessor.MetricSSIM, cmp, workers).Select(context.Background(), source, pool)
			if err != nil {
				t.Fatalf("workers=%d: %v", workers, err)
			}
			if !pool.Contains(sel.Match) {
				t.Fatalf("workers=%d: match %v not in pool", workers, sel.Match)
			}
			if cmp == MaximizeScore {
				if first == (types.Identity{}) {
					first = sel.Match
				} else if sel.Match != first {
					t.Fatalf("workers=%d picked %v, earlier run picked %v", workers, sel.Match, first)
				}
			}
		}
	}
}

func TestSelectDuplicateContentIsStable(t *testing.T) {
	source := testsupport.Frame("in", "src.png", testsupport.Gradient(16, 16, 0))
	dup := testsupport.Gradient(16, 16, 0)
	for run := 0; run < 20; run++ {
		// Vary the pool order to make sure the winner does not depend on it
		frames := []types.Frame{
			testsupport.Frame("pool", "zz_copy.png", dup),
			testsupport.Frame("pool", "aa_copy.png", dup),
			testsupport.Frame("pool", "other.png", testsupport.SolidGray(16, 16, 90)),
		}
		if run%2 == 1 {
			frames[0], frames[1] = frames[1], frames[0]
		}
		sel, err := newSelector(t, imageprocessor.MetricSSIM, MaximizeScore, 1+run%3).
			Select(context.Background(), source, &types.ImageSet{Frames: frames})
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if sel.Match.Name != "aa_copy.png" {
			t.Fatalf("run %d: picked %s, want aa_copy.png", run, sel.Match.Name)
		}
	}
}

func TestSelectSkipsMismatchedFrames(t *testing.T) {
	source := testsupport.Frame("in", "a.png", testsupport.SolidGray(8, 8, 10))
	pool := &types.ImageSet{Frames: []types.Frame{
		testsupport.Frame("pool", "big.png", testsupport.SolidGray(16, 16, 10)),
		testsupport.Frame("pool", "ok.png", testsupport.SolidGray(8, 8, 200)),
	}}

	sel, err := newSelector(t, imageprocessor.MetricRMS, MaximizeScore, 2).Select(context.Background(), source, pool)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if sel.Match.Name != "ok.png" {
		t.Fatalf("expected the only comparable frame, got %s", sel.Match.Name)
	}
	if len(sel.Mismatches) != 1 {
		t.Fatalf("expected one mismatch, got %v", sel.Mismatches)
	}
	var mismatch *imageprocessor.DimensionMismatchError
	if !errors.As(sel.Mismatches[0], &mismatch) || mismatch.B.Name != "big.png" || mismatch.A.Name != "a.png" {
		t.Fatalf("unexpected mismatch error: %v", sel.Mismatches[0])
	}
}

func TestSelectKeepsOtherFailuresApartFromMismatches(t *testing.T) {
	source := testsupport.Frame("in", "a.png", testsupport.SolidGray(8, 8, 10))
	pool := &types.ImageSet{Frames: []types.Frame{
		{ID: types.Identity{Dir: "pool", Name: "empty.png"}},
		testsupport.Frame("pool", "big.png", testsupport.SolidGray(16, 16, 10)),
		testsupport.Frame("pool", "ok.png", testsupport.SolidGray(8, 8, 10)),
	}}

	sel, err := newSelector(t, imageprocessor.MetricSSIM, MaximizeScore, 1).Select(context.Background(), source, pool)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if sel.Match.Name != "ok.png" || sel.Compared != 1 {
		t.Fatalf("unexpected selection: %+v", sel)
	}
	if len(sel.Mismatches) != 1 || len(sel.Failures) != 1 {
		t.Fatalf("expected one mismatch and one failure, got %v and %v", sel.Mismatches, sel.Failures)
	}
	var mismatch *imageprocessor.DimensionMismatchError
	if errors.As(sel.Failures[0], &mismatch) {
		t.Fatalf("missing pixel data reported as a mismatch: %v", sel.Failures[0])
	}
}

func TestSelectAllMismatched(t *testing.T) {
	source := testsupport.Frame("in", "a.png", testsupport.SolidGray(8, 8, 10))
	pool := &types.ImageSet{Frames: []types.Frame{
		testsupport.Frame("pool", "big.png", testsupport.SolidGray(16, 16, 10)),
	}}

	_, err := newSelector(t, imageprocessor.MetricSSIM, MaximizeScore, 1).Select(context.Background(), source, pool)
	if !errors.Is(err, ErrNoComparableFrame) {
		t.Fatalf("expected ErrNoComparableFrame, got %v", err)
	}
	var mismatch *imageprocessor.DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected joined mismatch error, got %v", err)
	}
}

func TestSelectCancelled(t *testing.T) {
	source := testsupport.Frame("in", "a.png", testsupport.SolidGray(8, 8, 10))
	pool := &types.ImageSet{Frames: []types.Frame{testsupport.Frame("pool", "b.png", testsupport.SolidGray(8, 8, 10))}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newSelector(t, imageprocessor.MetricSSIM, MaximizeScore, 1).Select(ctx, source, pool)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
