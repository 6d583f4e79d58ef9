package bnb

import (
	"context"
	"fmt"
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/bnbsearch/pkg/observability"
)

// stubNode is a bare node for frontier tests.
type stubNode struct {
	BaseNode
	key int
}

func stub(id, depth int, bound float64) *stubNode {
	return &stubNode{BaseNode: BaseNode{id: id, parentID: -1, depth: depth, bound: bound}}
}

func (n *stubNode) DeltaKey() int { return n.key }

type deltaMap map[int]float64

func (m deltaMap) DeltaValue(key int) (float64, bool) {
	v, ok := m[key]
	return v, ok
}

func ids(nodes []Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID()
	}
	return out
}

func drain(t *testing.T, o NodeOrderer) []int {
	t.Helper()
	var out []int
	for !o.IsEmpty() {
		n, err := o.Remove()
		require.NoError(t, err)
		out = append(out, n.ID())
	}
	return out
}

// treeWorkspace searches a complete binary tree whose leaves carry the
// scores. A node's bound is the best leaf below it plus slack per
// remaining level; its feasible solution is its leftmost finite leaf.
type treeWorkspace struct {
	depth  int
	leaves []float64
	slack  float64

	nanFeasible bool
	failBound   bool
	delay       time.Duration

	nextID      int
	activations int
}

func newTreeWorkspace(depth int, leaf func(i int) float64) *treeWorkspace {
	ws := &treeWorkspace{depth: depth, leaves: make([]float64, 1<<depth)}
	for i := range ws.leaves {
		ws.leaves[i] = leaf(i)
	}
	return ws
}

func modLeaves(i int) float64 { return float64((i*37)%101 + 1) }

func (ws *treeWorkspace) best() float64 {
	best := WorstScore
	for _, v := range ws.leaves {
		best = max(best, v)
	}
	return best
}

func (ws *treeWorkspace) root() *treeNode {
	ws.nextID = 1
	return &treeNode{BaseNode: NewRootNode(0)}
}

func (ws *treeWorkspace) span(n *treeNode) (int, int) {
	shift := ws.depth - n.Depth()
	return n.path << shift, (n.path + 1) << shift
}

func (ws *treeWorkspace) Activate(_ context.Context, n Node) (Active, error) {
	tn, ok := n.(*treeNode)
	if !ok {
		return nil, fmt.Errorf("unexpected node type %T", n)
	}
	ws.activations++
	if ws.delay > 0 {
		time.Sleep(ws.delay)
	}
	return &treeActive{ws: ws, n: tn}, nil
}

type treeNode struct {
	BaseNode
	path int
}

type treeSolution struct {
	leaf  int
	score float64
}

func (s treeSolution) Score() float64 { return s.score }

type treeActive struct {
	ws        *treeWorkspace
	n         *treeNode
	remaining time.Duration
}

func (a *treeActive) Node() Node { return a.n }

func (a *treeActive) Bound(_ context.Context, _ float64) (*RelaxedSolution, error) {
	if a.ws.failBound && a.n.Depth() > 0 {
		return nil, fmt.Errorf("oracle failure at node %d", a.n.ID())
	}
	lo, hi := a.ws.span(a.n)
	best := WorstScore
	for _, v := range a.ws.leaves[lo:hi] {
		best = max(best, v)
	}
	if math.IsInf(best, -1) {
		return &RelaxedSolution{Status: StatusInfeasible, Score: WorstScore}, nil
	}
	slack := a.ws.slack * float64(a.ws.depth-a.n.Depth())
	return &RelaxedSolution{Status: StatusOptimal, Score: best + slack}, nil
}

func (a *treeActive) FeasibleSolution(context.Context) (Solution, error) {
	lo, hi := a.ws.span(a.n)
	for i := lo; i < hi; i++ {
		if math.IsInf(a.ws.leaves[i], -1) {
			continue
		}
		if a.ws.nanFeasible {
			return treeSolution{leaf: i, score: math.NaN()}, nil
		}
		return treeSolution{leaf: i, score: a.ws.leaves[i]}, nil
	}
	return nil, nil
}

func (a *treeActive) Branch(context.Context) ([]Node, error) {
	if a.n.Depth() == a.ws.depth {
		return nil, nil
	}
	children := make([]Node, 2)
	for side := range 2 {
		id := a.ws.nextID
		a.ws.nextID++
		children[side] = &treeNode{
			BaseNode: NewChildNode(id, a.n, side, -math.Ln2),
			path:     a.n.path*2 + side,
		}
	}
	return children, nil
}

func (a *treeActive) UpdateTimeRemaining(d time.Duration) { a.remaining = d }

func quietOptions() Options {
	return Options{Logger: log.New(io.Discard), Hooks: observability.NoopSolverHooks{}}
}

type recordingHooks struct {
	started    int
	completed  int
	events     []observability.NodeEvent
	incumbents []float64
	summary    observability.SearchSummary
}

func (h *recordingHooks) OnSearchStart(context.Context, string, string) { h.started++ }

func (h *recordingHooks) OnNodeProcessed(_ context.Context, ev observability.NodeEvent) {
	h.events = append(h.events, ev)
}

func (h *recordingHooks) OnIncumbent(_ context.Context, score float64, _ int) {
	h.incumbents = append(h.incumbents, score)
}

func (h *recordingHooks) OnSearchComplete(_ context.Context, s observability.SearchSummary) {
	h.completed++
	h.summary = s
}
