package bnb

import "iter"

// DFSOrderer is a plain LIFO stack. Each batch of children is ordered by
// the ChildOrderer before being pushed, so the child it ranks last is
// explored first.
type DFSOrderer struct {
	child ChildOrderer
	stack []Node
}

func NewDFSOrderer(child ChildOrderer) *DFSOrderer {
	if child == nil {
		child = FixedChildOrderer{}
	}
	return &DFSOrderer{child: child}
}

func (o *DFSOrderer) Add(n Node) { o.stack = append(o.stack, n) }

func (o *DFSOrderer) AddChildren(e Expansion) {
	o.stack = append(o.stack, o.child.OrderChildren(e.Relaxed, e.RootRelaxed, e.Children)...)
}

func (o *DFSOrderer) Remove() (Node, error) {
	if len(o.stack) == 0 {
		return nil, ErrEmptyFrontier
	}
	last := len(o.stack) - 1
	n := o.stack[last]
	o.stack[last] = nil
	o.stack = o.stack[:last]
	return n, nil
}

func (o *DFSOrderer) Size() int     { return len(o.stack) }
func (o *DFSOrderer) IsEmpty() bool { return len(o.stack) == 0 }

func (o *DFSOrderer) Clear() {
	clear(o.stack)
	o.stack = o.stack[:0]
}

// All yields the stack from bottom to top.
func (o *DFSOrderer) All() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, n := range o.stack {
			if !yield(n) {
				return
			}
		}
	}
}
