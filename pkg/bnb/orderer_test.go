package bnb

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/bnbsearch/pkg/errors"
)

func TestBFSOrdererBestBoundFirst(t *testing.T) {
	o := NewBFSOrderer()
	for _, id := range []int{-2, -1, -3, -4} {
		o.Add(stub(id, 1, float64(id)))
	}
	require.Equal(t, 4, o.Size())

	n, err := o.Remove()
	require.NoError(t, err)
	assert.Equal(t, -1, n.ID())
	assert.Equal(t, []int{-2, -3, -4}, drain(t, o))
}

func TestBFSOrdererTiesByID(t *testing.T) {
	o := NewBFSOrderer()
	for _, id := range []int{7, 3, 5} {
		o.Add(stub(id, 1, 1))
	}
	assert.Equal(t, []int{3, 5, 7}, drain(t, o))
}

func TestDFSBFCOrdererDepthThenBound(t *testing.T) {
	o := NewDFSBFCOrderer()
	root := stub(0, 0, 10)
	a := stub(1, 1, 5)
	b := stub(2, 1, 7)
	c := stub(3, 2, 6)
	d := stub(4, 2, 4)
	for _, n := range []Node{root, a, b, c, d} {
		o.Add(n)
	}
	assert.Equal(t, []int{3, 4, 2, 1, 0}, drain(t, o))
}

func TestDFSBFCOrdererIgnoresRecency(t *testing.T) {
	o := NewDFSBFCOrderer()
	deep := stub(3, 2, 6)
	deep.parentID = 1
	o.Add(deep)

	// Newer and better bounded, but shallower.
	late := stub(9, 1, 20)
	late.parentID = 8
	o.Add(late)
	o.Add(stub(2, 1, 7))

	assert.Equal(t, []int{3, 9, 2}, drain(t, o))
	assert.True(t, ByDepthThenBound(deep, late))
	assert.False(t, ByDepthThenBound(late, deep))
}

func TestDFSOrdererLastChildFirst(t *testing.T) {
	o := NewDFSOrderer(FixedChildOrderer{})
	root := stub(0, 0, 10)
	o.Add(root)
	n, err := o.Remove()
	require.NoError(t, err)
	require.Equal(t, 0, n.ID())

	o.AddChildren(Expansion{Parent: root, Children: []Node{stub(1, 1, 5), stub(2, 1, 9)}})
	o.AddChildren(Expansion{Parent: root, Children: []Node{stub(3, 2, 1), stub(4, 2, 2)}})
	assert.Equal(t, []int{4, 3, 2, 1}, drain(t, o))
}

func TestRemoveFromEmptyFrontier(t *testing.T) {
	orderers := map[string]NodeOrderer{
		"dfs":              NewDFSOrderer(nil),
		"bfs":              NewBFSOrderer(),
		"dfs-bfc":          NewDFSBFCOrderer(),
		"plunging-bfs":     NewPlungingBFSOrderer(0.1, 0.5),
		"depth-stratified": NewDepthStratifiedSampler(3, NewRand(1)),
		"random-walk":      NewRandomWalkOrderer(3, NewRand(1)),
	}
	for name, o := range orderers {
		t.Run(name, func(t *testing.T) {
			assert.True(t, o.IsEmpty())
			_, err := o.Remove()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEmptyFrontier))
			assert.True(t, errs.Is(err, errs.ErrCodeEmptyFrontier))
		})
	}
}

func TestOrdererClearAndAll(t *testing.T) {
	o := NewBFSOrderer()
	o.Add(stub(1, 1, 1))
	o.Add(stub(2, 1, 2))
	o.Add(stub(2, 1, 2))
	require.Equal(t, 2, o.Size())

	got := ids(slices.Collect(o.All()))
	slices.Sort(got)
	assert.Equal(t, []int{1, 2}, got)

	o.Clear()
	assert.True(t, o.IsEmpty())
	assert.Empty(t, slices.Collect(o.All()))
}

func TestPlungingBFSWithoutPlunge(t *testing.T) {
	o := NewPlungingBFSOrderer(0, 0)
	root := stub(0, 0, 0)
	o.Add(root)
	n, err := o.Remove()
	require.NoError(t, err)
	require.Equal(t, 0, n.ID())

	o.AddChildren(Expansion{Parent: root, Children: []Node{stub(-1, 1, -1), stub(-2, 1, -2)}})
	o.Add(stub(-3, 1, -3))
	o.Add(stub(-4, 1, -4))
	assert.Equal(t, []int{-1, -2, -3, -4}, drain(t, o))
}

func TestPlungingBFSForcedPlunge(t *testing.T) {
	o := NewPlungingBFSOrderer(1, 1)
	root := stub(0, 0, 0)
	o.Add(root)
	_, err := o.Remove()
	require.NoError(t, err)

	c1 := stub(-1, 1, -1)
	o.AddChildren(Expansion{Parent: root, Children: []Node{c1, stub(-2, 1, -2)}})
	n, err := o.Remove()
	require.NoError(t, err)
	require.Equal(t, -1, n.ID())

	o.AddChildren(Expansion{Parent: c1, Children: []Node{stub(-5, 2, -1.5), stub(-6, 2, -1.6)}})
	o.Add(stub(-4, 1, -0.5))

	// The plunge is shallower than the minimum, so the child wins over
	// the better frontier node.
	n, err = o.Remove()
	require.NoError(t, err)
	assert.Equal(t, -5, n.ID())
	assert.Equal(t, []int{-4, -6, -2}, drain(t, o))
}

func TestPlungingBFSConditionalPlunge(t *testing.T) {
	o := NewPlungingBFSOrderer(0, 1)
	root := stub(0, 0, 0)
	o.Add(root)
	_, err := o.Remove()
	require.NoError(t, err)

	c1 := stub(-1, 1, -1)
	o.AddChildren(Expansion{Parent: root, Children: []Node{c1, stub(-2, 1, -2)}})
	n, err := o.Remove()
	require.NoError(t, err)
	require.Equal(t, -1, n.ID())

	// Both children are worse than the frontier's best, so the plunge stops.
	o.AddChildren(Expansion{Parent: c1, Children: []Node{stub(-5, 2, -3), stub(-6, 2, -4)}})
	n, err = o.Remove()
	require.NoError(t, err)
	assert.Equal(t, -2, n.ID())
}

func TestRandomWalkResetsAtMaxDepth(t *testing.T) {
	o := NewRandomWalkOrderer(1, NewRand(7))
	var discarded []int
	o.OnDiscard(func(n Node) { discarded = append(discarded, n.ID()) })

	o.Add(stub(0, 0, 10))
	o.Add(stub(1, 1, 5))
	o.Add(stub(2, 1, 4))

	n, err := o.Remove()
	require.NoError(t, err)
	assert.Equal(t, 0, n.ID())
	assert.Equal(t, 0, o.Size())
	assert.ElementsMatch(t, []int{1, 2}, discarded)
	assert.False(t, o.IsEmpty(), "the root is always available")
}

func TestRandomWalkPicksOneChild(t *testing.T) {
	o := NewRandomWalkOrderer(5, NewRand(3))
	var discarded []int
	o.OnDiscard(func(n Node) { discarded = append(discarded, n.ID()) })

	root := stub(0, 0, 10)
	o.Add(root)
	n, err := o.Remove()
	require.NoError(t, err)
	require.Equal(t, 0, n.ID())

	o.AddChildren(Expansion{Parent: root, Children: []Node{stub(1, 1, 5), stub(2, 1, 4)}})
	n, err = o.Remove()
	require.NoError(t, err)
	require.Contains(t, []int{1, 2}, n.ID())
	assert.Equal(t, []int{3 - n.ID()}, discarded)
	assert.Equal(t, 0, o.Size())

	n, err = o.Remove()
	require.NoError(t, err)
	assert.Equal(t, 0, n.ID(), "an empty deck restarts from the root")
}

func TestDepthStratifiedSamplerRotatesTargetDepth(t *testing.T) {
	o := NewDepthStratifiedSampler(3, NewRand(5))
	var discarded []int
	o.OnDiscard(func(n Node) { discarded = append(discarded, n.ID()) })

	root := stub(0, 0, 10)
	o.Add(root)
	n, err := o.Remove()
	require.NoError(t, err)
	require.Equal(t, 0, n.ID())
	require.Equal(t, 0, o.CurDiveDepth())

	// Target depth 0: the root's expansion is dropped.
	o.AddChildren(Expansion{Parent: root, Children: []Node{stub(1, 1, 5), stub(2, 1, 4)}})
	assert.Equal(t, []int{1, 2}, discarded)
	n, err = o.Remove()
	require.NoError(t, err)
	assert.Equal(t, 0, n.ID())
	assert.Equal(t, 1, o.CurDiveDepth())

	// Target depth 1: one child is sampled, its expansion is dropped.
	discarded = nil
	o.AddChildren(Expansion{Parent: root, Children: []Node{stub(3, 1, 5), stub(4, 1, 4)}})
	child, err := o.Remove()
	require.NoError(t, err)
	require.Contains(t, []int{3, 4}, child.ID())
	assert.Equal(t, []int{7 - child.ID()}, discarded)

	o.AddChildren(Expansion{Parent: child, Children: []Node{stub(5, 2, 3), stub(6, 2, 2)}})
	assert.Equal(t, 0, o.Size())
	n, err = o.Remove()
	require.NoError(t, err)
	assert.Equal(t, 0, n.ID())
	assert.Equal(t, 2, o.CurDiveDepth())

	n, err = o.Remove()
	require.NoError(t, err)
	assert.Equal(t, 0, n.ID())
	assert.Equal(t, 0, o.CurDiveDepth(), "target depth wraps at max depth")
}

func TestNewNodeOrderer(t *testing.T) {
	for _, k := range OrdererKinds {
		t.Run(string(k), func(t *testing.T) {
			cfg := DefaultConfig().Orderer
			cfg.Kind = k
			o, err := NewNodeOrderer(cfg, nil, nil)
			require.NoError(t, err)
			require.NotNil(t, o)
			_, isDiscarder := o.(discarder)
			assert.Equal(t, !k.Exhaustive(), isDiscarder)
		})
	}

	_, err := NewNodeOrderer(OrdererConfig{Kind: "nope"}, nil, nil)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))
}

func TestParseOrdererKind(t *testing.T) {
	k, err := ParseOrdererKind("plunging-bfs")
	require.NoError(t, err)
	assert.Equal(t, OrdererPlungingBFS, k)

	_, err = ParseOrdererKind("best-first")
	assert.Error(t, err)
}

func TestNodeQueueRemove(t *testing.T) {
	q := newNodeQueue(ByBound)
	for i, b := range []float64{3, 9, 1, 7} {
		q.push(stub(i, 1, b))
	}
	assert.True(t, q.remove(1))
	assert.False(t, q.remove(1))
	assert.False(t, q.contains(1))
	assert.Equal(t, 7.0, q.maxBound())

	top, ok := q.peek()
	require.True(t, ok)
	assert.Equal(t, 3, top.ID())
	assert.Equal(t, 3, q.pop().ID())
	assert.Equal(t, 0, q.pop().ID())
	assert.Equal(t, 2, q.pop().ID())
	assert.Equal(t, WorstScore, q.maxBound())
}
