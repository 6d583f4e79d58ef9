package bnb

import "iter"

// PQOrderer is a priority-queue frontier under a Comparator. It ignores
// the child orderer: priority alone decides.
type PQOrderer struct {
	q *nodeQueue
}

// NewPQOrderer returns a priority-queue frontier ordered by less.
func NewPQOrderer(less Comparator) *PQOrderer {
	return &PQOrderer{q: newNodeQueue(less)}
}

// NewBFSOrderer expands the globally most promising node next.
func NewBFSOrderer() *PQOrderer { return NewPQOrderer(ByBound) }

// NewDFSBFCOrderer expands the deepest node next, best bound first among
// equal depths.
func NewDFSBFCOrderer() *PQOrderer { return NewPQOrderer(ByDepthThenBound) }

func (o *PQOrderer) Add(n Node) { o.q.push(n) }

func (o *PQOrderer) AddChildren(e Expansion) {
	for _, c := range e.Children {
		o.q.push(c)
	}
}

func (o *PQOrderer) Remove() (Node, error) {
	if o.q.Len() == 0 {
		return nil, ErrEmptyFrontier
	}
	return o.q.pop(), nil
}

func (o *PQOrderer) Size() int           { return o.q.Len() }
func (o *PQOrderer) IsEmpty() bool       { return o.q.Len() == 0 }
func (o *PQOrderer) Clear()              { o.q.clear() }
func (o *PQOrderer) All() iter.Seq[Node] { return o.q.all() }
