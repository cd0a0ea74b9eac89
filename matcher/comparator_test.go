package matcher

import (
	"math"
	"testing"
)

func TestComparatorBetter(t *testing.T) {
	low := candidate{index: 0, path: "pool/a.png", score: 0.2}
	high := candidate{index: 1, path: "pool/b.png", score: 0.9}
	negative := candidate{index: 2, path: "pool/c.png", score: -0.95}

	if !MaximizeScore.better(high, low) || MaximizeScore.better(negative, high) {
		t.Fatal("raw max should prefer the largest score")
	}
	if !MaximizeAbsScore.better(negative, high) {
		t.Fatal("absolute max should prefer the largest magnitude")
	}
	if !MaximizeScore.better(low, noCandidate) || MaximizeScore.better(noCandidate, low) {
		t.Fatal("any candidate beats no candidate")
	}
}

func TestComparatorTieBreakIsOrderIndependent(t *testing.T) {
	a := candidate{index: 5, path: "pool/dup_a.png", score: 0.5}
	b := candidate{index: 1, path: "pool/dup_b.png", score: 0.5}
	c := candidate{index: 3, path: "pool/other.png", score: -0.5}

	orders := [][]candidate{{a, b, c}, {b, a, c}, {c, b, a}, {b, c, a}}
	for _, cmp := range []Comparator{MaximizeScore, MaximizeAbsScore} {
		for _, order := range orders {
			if got := cmp.reduce(order...); got.path != a.path {
				t.Fatalf("%v: reduce(%v) picked %s, want %s", cmp, order, got.path, a.path)
			}
		}
	}
}

func TestComparatorNaNNeverWins(t *testing.T) {
	nan := candidate{index: 0, path: "pool/a.png", score: math.NaN()}
	poor := candidate{index: 1, path: "pool/b.png", score: -1}
	if MaximizeScore.better(nan, poor) {
		t.Fatal("NaN must not beat a real score")
	}
	if got := MaximizeAbsScore.reduce(nan, poor); got.path != poor.path {
		t.Fatalf("expected real score to win, got %s", got.path)
	}
}

func TestParseComparator(t *testing.T) {
	cases := map[string]Comparator{"": MaximizeScore, "MAX": MaximizeScore, "absmax": MaximizeAbsScore, "abs": MaximizeAbsScore}
	for in, want := range cases {
		got, err := ParseComparator(in)
		if err != nil || got != want {
			t.Fatalf("ParseComparator(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseComparator("min"); err == nil {
		t.Fatal("expected error for unknown comparator")
	}
	if MaximizeAbsScore.String() != "absmax" {
		t.Fatalf("unexpected String: %s", MaximizeAbsScore)
	}
}
