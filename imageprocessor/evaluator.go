package imageprocessor

import (
	"fmt"
	"image"

	"framematch/types"
)

// DimensionMismatchError reports two frames that cannot be compared because
// their sizes differ
type DimensionMismatchError struct {
	A, B         types.Identity
	SizeA, SizeB image.Point
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("mismatch between dimensions of %s (%dx%d) and %s (%dx%d)",
		e.A.Path(), e.SizeA.X, e.SizeA.Y, e.B.Path(), e.SizeB.X, e.SizeB.Y)
}

// Evaluator scores frame pairs with one metric. It holds no mutable state and
// is safe for concurrent use.
type Evaluator struct {
	metric Metric
	score  func(a, b *image.Gray) float64
}

// NewEvaluator creates an evaluator for the given metric
func NewEvaluator(metric Metric) (*Evaluator, error) {
	score, err := metric.scoreFunc()
	if err != nil {
		return nil, err
	}
	return &Evaluator{metric: metric, score: score}, nil
}

// Metric returns the metric this evaluator scores with
func (e *Evaluator) Metric() Metric {
	return e.metric
}

// Compare scores a against b. Frames of different sizes yield a
// *DimensionMismatchError naming both.
func (e *Evaluator) Compare(a, b types.Frame) (float64, error) {
	if a.Pix == nil || b.Pix == nil {
		return 0, fmt.Errorf("compare %s and %s: frame has no pixel data", a.ID.Path(), b.ID.Path())
	}

	sizeA, sizeB := a.Pix.Rect.Size(), b.Pix.Rect.Size()
	if sizeA != sizeB {
		return 0, &DimensionMismatchError{A: a.ID, B: b.ID, SizeA: sizeA, SizeB: sizeB}
	}

	return e.score(ToGray(a.Pix), ToGray(b.Pix)), nil
}
