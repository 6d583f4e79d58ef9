package bnb

// Comparator reports whether a should be dequeued before b.
type Comparator func(a, b Node) bool

// ByBound orders nodes by descending optimistic bound, so the globally most
// promising node comes out first.
func ByBound(a, b Node) bool {
	return a.OptimisticBound() > b.OptimisticBound()
}

// ByDepthThenBound orders deeper nodes first and, among nodes of equal
// depth, higher bounds first. Depth stands in for insertion recency, so
// the order approximates a stack without keeping one. Nodes of equal depth
// from unrelated branches are not returned in insertion order.
func ByDepthThenBound(a, b Node) bool {
	if a.Depth() != b.Depth() {
		return a.Depth() > b.Depth()
	}
	return a.OptimisticBound() > b.OptimisticBound()
}
