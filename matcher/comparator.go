package matcher

import (
	"fmt"
	"math"
	"strings"
)

// Comparator decides which of two scores is the better match
type Comparator int

const (
	// MaximizeScore prefers the highest raw score
	MaximizeScore Comparator = iota
	// MaximizeAbsScore prefers the highest |score|, for signed metrics where a
	// strong negative value is as telling as a strong positive one
	MaximizeAbsScore
)

// ParseComparator resolves "max" or "absmax"
func ParseComparator(name string) (Comparator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "max":
		return MaximizeScore, nil
	case "absmax", "abs-max", "abs":
		return MaximizeAbsScore, nil
	default:
		return 0, fmt.Errorf("unknown comparator %q (want max or absmax)", name)
	}
}

func (c Comparator) String() string {
	switch c {
	case MaximizeScore:
		return "max"
	case MaximizeAbsScore:
		return "absmax"
	default:
		return fmt.Sprintf("Comparator(%d)", int(c))
	}
}

// key maps a score onto the value being maximized. NaN maps to -Inf so it never wins.
func (c Comparator) key(score float64) float64 {
	if math.IsNaN(score) {
		return math.Inf(-1)
	}
	if c == MaximizeAbsScore {
		return math.Abs(score)
	}
	return score
}

// candidate is one scored pool frame
type candidate struct {
	index int // position in the pool, -1 when empty
	path  string
	score float64
}

var noCandidate = candidate{index: -1}

// better reports whether a beats b. Equal keys go to the smaller path, so the
// winner is the same whatever order the candidates are reduced in.
func (c Comparator) better(a, b candidate) bool {
	if a.index < 0 {
		return false
	}
	if b.index < 0 {
		return true
	}
	ka, kb := c.key(a.score), c.key(b.score)
	if ka != kb {
		return ka > kb
	}
	return a.path < b.path
}

// reduce returns the best of the given candidates
func (c Comparator) reduce(candidates ...candidate) candidate {
	best := noCandidate
	for _, cand := range candidates {
		if c.better(cand, best) {
			best = cand
		}
	}
	return best
}
