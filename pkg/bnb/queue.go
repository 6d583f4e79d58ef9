package bnb

import (
	"container/heap"
	"iter"
)

// nodeQueue is a binary heap of nodes under a Comparator with O(log n)
// removal by node ID. Nodes the comparator considers equal come out in
// ascending ID order.
type nodeQueue struct {
	less  Comparator
	items []Node
	index map[int]int
}

func newNodeQueue(less Comparator) *nodeQueue {
	return &nodeQueue{less: less, index: make(map[int]int)}
}

// heap.Interface

func (q *nodeQueue) Len() int { return len(q.items) }

func (q *nodeQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if q.less(a, b) {
		return true
	}
	if q.less(b, a) {
		return false
	}
	return a.ID() < b.ID()
}

func (q *nodeQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.index[q.items[i].ID()] = i
	q.index[q.items[j].ID()] = j
}

func (q *nodeQueue) Push(x any) {
	n := x.(Node)
	q.index[n.ID()] = len(q.items)
	q.items = append(q.items, n)
}

func (q *nodeQueue) Pop() any {
	last := len(q.items) - 1
	n := q.items[last]
	q.items[last] = nil
	q.items = q.items[:last]
	delete(q.index, n.ID())
	return n
}

// Typed API

func (q *nodeQueue) push(n Node) {
	if _, ok := q.index[n.ID()]; ok {
		return
	}
	heap.Push(q, n)
}

func (q *nodeQueue) pop() Node {
	return heap.Pop(q).(Node)
}

func (q *nodeQueue) peek() (Node, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// remove drops the node with the given ID. It reports whether it was queued.
func (q *nodeQueue) remove(id int) bool {
	i, ok := q.index[id]
	if !ok {
		return false
	}
	heap.Remove(q, i)
	return true
}

func (q *nodeQueue) contains(id int) bool {
	_, ok := q.index[id]
	return ok
}

func (q *nodeQueue) clear() {
	clear(q.items)
	q.items = q.items[:0]
	clear(q.index)
}

// all yields the queued nodes in heap order, not priority order.
func (q *nodeQueue) all() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, n := range q.items {
			if !yield(n) {
				return
			}
		}
	}
}

// maxBound is the largest optimistic bound in the queue, or WorstScore.
func (q *nodeQueue) maxBound() float64 {
	best := WorstScore
	for _, n := range q.items {
		best = max(best, n.OptimisticBound())
	}
	return best
}
