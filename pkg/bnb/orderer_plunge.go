package bnb

import (
	"iter"
	"math"
)

// Default plunge proportions, relative to the deepest level seen so far.
const (
	DefaultMinPlungeDepthProp = 0.1
	DefaultMaxPlungeDepthProp = 0.5
)

// PlungingBFSOrderer dives depth first from a best-bound node before
// reverting to best-bound selection.
//
// After a node is popped by bound, the orderer keeps taking the best child
// of the last expansion. The dive is unconditional while it is shallower
// than ceil(minProp * maxTreeDepth) levels, continues up to
// ceil(maxProp * maxTreeDepth) levels only while the best child is at
// least as good as the best frontier node, and stops otherwise.
type PlungingBFSOrderer struct {
	q       *nodeQueue
	minProp float64
	maxProp float64

	lastChildren []Node
	plungeDepth  int
	maxTreeDepth int
}

func NewPlungingBFSOrderer(minProp, maxProp float64) *PlungingBFSOrderer {
	if maxProp < minProp {
		maxProp = minProp
	}
	return &PlungingBFSOrderer{q: newNodeQueue(ByBound), minProp: minProp, maxProp: maxProp}
}

func (o *PlungingBFSOrderer) Add(n Node) {
	o.maxTreeDepth = max(o.maxTreeDepth, n.Depth())
	o.q.push(n)
}

func (o *PlungingBFSOrderer) AddChildren(e Expansion) {
	for _, c := range e.Children {
		o.Add(c)
	}
	o.lastChildren = e.Children
}

func (o *PlungingBFSOrderer) Remove() (Node, error) {
	if o.q.Len() == 0 {
		return nil, ErrEmptyFrontier
	}
	children := o.lastChildren
	o.lastChildren = nil

	if best, ok := o.bestQueued(children); ok && o.continuePlunge(best) {
		o.q.remove(best.ID())
		o.plungeDepth++
		return best, nil
	}
	o.plungeDepth = 0
	return o.q.pop(), nil
}

func (o *PlungingBFSOrderer) bestQueued(nodes []Node) (Node, bool) {
	var best Node
	for _, n := range nodes {
		if !o.q.contains(n.ID()) {
			continue
		}
		if best == nil || ByBound(n, best) {
			best = n
		}
	}
	return best, best != nil
}

func (o *PlungingBFSOrderer) continuePlunge(child Node) bool {
	depth := float64(o.maxTreeDepth)
	minLevels := int(math.Ceil(o.minProp * depth))
	maxLevels := int(math.Ceil(o.maxProp * depth))
	switch {
	case o.plungeDepth < minLevels:
		return true
	case o.plungeDepth >= maxLevels:
		return false
	}
	top, _ := o.q.peek()
	return child.OptimisticBound() >= top.OptimisticBound()
}

func (o *PlungingBFSOrderer) Size() int     { return o.q.Len() }
func (o *PlungingBFSOrderer) IsEmpty() bool { return o.q.Len() == 0 }

func (o *PlungingBFSOrderer) Clear() {
	o.q.clear()
	o.lastChildren = nil
	o.plungeDepth = 0
	o.maxTreeDepth = 0
}

func (o *PlungingBFSOrderer) All() iter.Seq[Node] { return o.q.all() }
