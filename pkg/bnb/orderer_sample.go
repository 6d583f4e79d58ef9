package bnb

import (
	"iter"
	"math/rand"
)

// DefaultMaxDepth bounds random dives when the configuration leaves it unset.
const DefaultMaxDepth = 10

// DepthStratifiedSampler samples node-processing cost per depth instead of
// searching. Each pass dives from the root to the target depth
// curDiveDepth, picking a uniformly random child at every level and
// dropping its siblings; the expansion of the node at the target depth is
// dropped too. When a pass ends the target advances modulo maxDepth.
type DepthStratifiedSampler struct {
	maxDepth int
	rng      *rand.Rand
	discard  func(Node)

	root         Node
	onDeck       []Node
	curDiveDepth int
}

func NewDepthStratifiedSampler(maxDepth int, rng *rand.Rand) *DepthStratifiedSampler {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if rng == nil {
		rng = NewRand(0)
	}
	return &DepthStratifiedSampler{maxDepth: maxDepth, rng: rng}
}

// OnDiscard registers fn to be called for every node the sampler drops.
func (o *DepthStratifiedSampler) OnDiscard(fn func(Node)) { o.discard = fn }

// CurDiveDepth is the target depth of the current pass.
func (o *DepthStratifiedSampler) CurDiveDepth() int { return o.curDiveDepth }

func (o *DepthStratifiedSampler) Add(n Node) {
	if n.Depth() == 0 && o.root == nil {
		o.root = n
	}
	o.onDeck = append(o.onDeck, n)
}

func (o *DepthStratifiedSampler) AddChildren(e Expansion) {
	if e.Parent != nil && e.Parent.Depth() >= o.curDiveDepth {
		o.drop(e.Children, nil)
		return
	}
	o.onDeck = append(o.onDeck, e.Children...)
}

func (o *DepthStratifiedSampler) Remove() (Node, error) {
	if len(o.onDeck) == 0 {
		if o.root == nil {
			return nil, ErrEmptyFrontier
		}
		o.curDiveDepth = (o.curDiveDepth + 1) % o.maxDepth
		return o.root, nil
	}
	n := o.onDeck[o.rng.Intn(len(o.onDeck))]
	o.drop(o.onDeck, n)
	o.onDeck = o.onDeck[:0]
	return n, nil
}

func (o *DepthStratifiedSampler) drop(nodes []Node, keep Node) {
	if o.discard == nil {
		return
	}
	for _, n := range nodes {
		if n != keep && n != o.root {
			o.discard(n)
		}
	}
}

func (o *DepthStratifiedSampler) Size() int     { return len(o.onDeck) }
func (o *DepthStratifiedSampler) IsEmpty() bool { return o.root == nil && len(o.onDeck) == 0 }

func (o *DepthStratifiedSampler) Clear() {
	clear(o.onDeck)
	o.onDeck = o.onDeck[:0]
	o.root = nil
	o.curDiveDepth = 0
}

func (o *DepthStratifiedSampler) All() iter.Seq[Node] { return nodesSeq(o.onDeck) }

// RandomWalkOrderer is a non-backtracking random dive. It keeps only the
// children of the current node; Remove returns one of them uniformly at
// random and drops the rest, or restarts from the root once the nodes on
// deck have reached maxDepth.
type RandomWalkOrderer struct {
	maxDepth int
	rng      *rand.Rand
	discard  func(Node)

	root   Node
	onDeck []Node
}

func NewRandomWalkOrderer(maxDepth int, rng *rand.Rand) *RandomWalkOrderer {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if rng == nil {
		rng = NewRand(0)
	}
	return &RandomWalkOrderer{maxDepth: maxDepth, rng: rng}
}

// OnDiscard registers fn to be called for every node the walk drops.
func (o *RandomWalkOrderer) OnDiscard(fn func(Node)) { o.discard = fn }

func (o *RandomWalkOrderer) Add(n Node) {
	if n.Depth() == 0 && o.root == nil {
		o.root = n
	}
	o.onDeck = append(o.onDeck, n)
}

func (o *RandomWalkOrderer) AddChildren(e Expansion) {
	o.onDeck = append(o.onDeck, e.Children...)
}

func (o *RandomWalkOrderer) Remove() (Node, error) {
	if len(o.onDeck) == 0 {
		if o.root == nil {
			return nil, ErrEmptyFrontier
		}
		return o.root, nil
	}
	if o.deckDepth() >= o.maxDepth {
		o.reset()
		return o.root, nil
	}
	n := o.onDeck[o.rng.Intn(len(o.onDeck))]
	o.drop(n)
	return n, nil
}

func (o *RandomWalkOrderer) deckDepth() int {
	d := 0
	for _, n := range o.onDeck {
		d = max(d, n.Depth())
	}
	return d
}

func (o *RandomWalkOrderer) reset() { o.drop(nil) }

// drop discards everything on deck except keep and the root.
func (o *RandomWalkOrderer) drop(keep Node) {
	if o.discard != nil {
		for _, n := range o.onDeck {
			if n != keep && n != o.root {
				o.discard(n)
			}
		}
	}
	clear(o.onDeck)
	o.onDeck = o.onDeck[:0]
}

func (o *RandomWalkOrderer) Size() int     { return len(o.onDeck) }
func (o *RandomWalkOrderer) IsEmpty() bool { return o.root == nil && len(o.onDeck) == 0 }

func (o *RandomWalkOrderer) Clear() {
	clear(o.onDeck)
	o.onDeck = o.onDeck[:0]
	o.root = nil
}

func (o *RandomWalkOrderer) All() iter.Seq[Node] { return nodesSeq(o.onDeck) }

func nodesSeq(nodes []Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, n := range nodes {
			if !yield(n) {
				return
			}
		}
	}
}
