package bnb

import (
	"math"
	"math/rand"
	"slices"
)

// tieTolerance is the distance below which parent and root values are equal.
const tieTolerance = 1e-10

// ChildOrderer decides the visitation order of the children of one
// expansion. Stack-based orderers push the returned slice front to back,
// so the last element is explored first.
type ChildOrderer interface {
	OrderChildren(relaxed, rootRelaxed *RelaxedSolution, children []Node) []Node
}

// LPGuidedChildOrderer implements the branching direction rule of Martin
// (1998). For a binary split (c1 = "x <= k", c2 = "x >= k") it compares
// the branched quantity at the parent's relaxed solution with its value at
// the root's relaxed solution, and explores first the child that moves the
// value back towards the root's regime.
type LPGuidedChildOrderer struct {
	rng *rand.Rand
}

// NewLPGuidedChildOrderer returns the LP-guided orderer. Ties are broken
// by a coin flip from rng.
func NewLPGuidedChildOrderer(rng *rand.Rand) *LPGuidedChildOrderer {
	if rng == nil {
		rng = NewRand(0)
	}
	return &LPGuidedChildOrderer{rng: rng}
}

// OrderChildren returns [c1, c2] when the parent's value is below the
// root's, [c2, c1] when it is above, and a random order on a tie or when
// either value is unavailable. Batches that are not binary are returned
// unchanged.
func (o *LPGuidedChildOrderer) OrderChildren(relaxed, rootRelaxed *RelaxedSolution, children []Node) []Node {
	out := slices.Clone(children)
	if len(out) != 2 {
		return out
	}
	c1, c2 := out[0], out[1]

	parentVal, rootVal, ok := deltaValues(relaxed, rootRelaxed, c1)
	if !ok || math.Abs(parentVal-rootVal) < tieTolerance {
		if o.rng.Intn(2) == 0 {
			return []Node{c1, c2}
		}
		return []Node{c2, c1}
	}
	if parentVal < rootVal {
		return []Node{c1, c2}
	}
	return []Node{c2, c1}
}

func deltaValues(relaxed, rootRelaxed *RelaxedSolution, child Node) (float64, float64, bool) {
	if relaxed == nil || rootRelaxed == nil || relaxed.Values == nil || rootRelaxed.Values == nil {
		return 0, 0, false
	}
	d, ok := child.(BranchDelta)
	if !ok {
		return 0, 0, false
	}
	parentVal, ok := relaxed.Values.DeltaValue(d.DeltaKey())
	if !ok {
		return 0, 0, false
	}
	rootVal, ok := rootRelaxed.Values.DeltaValue(d.DeltaKey())
	if !ok {
		return 0, 0, false
	}
	return parentVal, rootVal, true
}

// FixedChildOrderer keeps the order produced by Branch.
type FixedChildOrderer struct{}

func (FixedChildOrderer) OrderChildren(_, _ *RelaxedSolution, children []Node) []Node {
	return slices.Clone(children)
}
