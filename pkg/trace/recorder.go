package trace

import (
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/bnbsearch/pkg/observability"
)

// DefaultMaxNodes caps the number of nodes a Recorder keeps.
const DefaultMaxNodes = 5000

// Node is one recorded search node.
type Node struct {
	ID       int
	ParentID int
	Depth    int
	Side     int
	Bound    float64
	Outcome  string
	Children int

	// Visits is above one for orderers that revisit nodes.
	Visits    int
	Incumbent bool
}

// Tree is an immutable copy of a recording.
type Tree struct {
	Solver    string
	Orderer   string
	Nodes     []Node // in processing order
	Summary   *observability.SearchSummary
	Truncated bool
}

// Recorder captures search events. It is safe for concurrent use, but
// records one search at a time: OnSearchStart discards the previous one.
type Recorder struct {
	mu       sync.Mutex
	maxNodes int

	solver, orderer string
	nodes           map[int]*Node
	order           []int
	pendingBest     map[int]bool
	summary         *observability.SearchSummary
	truncated       bool
}

// NewRecorder returns a Recorder keeping at most maxNodes nodes.
// maxNodes <= 0 selects DefaultMaxNodes.
func NewRecorder(maxNodes int) *Recorder {
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	r := &Recorder{maxNodes: maxNodes}
	r.reset()
	return r
}

func (r *Recorder) reset() {
	r.nodes = make(map[int]*Node)
	r.order = nil
	r.pendingBest = make(map[int]bool)
	r.summary = nil
	r.truncated = false
}

func (r *Recorder) OnSearchStart(_ context.Context, solver, orderer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
	r.solver, r.orderer = solver, orderer
}

func (r *Recorder) OnNodeProcessed(_ context.Context, ev observability.NodeEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n, ok := r.nodes[ev.ID]; ok {
		n.Visits++
		n.Bound, n.Outcome, n.Children = ev.Bound, ev.Outcome, ev.Children
		return
	}
	if len(r.order) >= r.maxNodes {
		r.truncated = true
		return
	}
	r.nodes[ev.ID] = &Node{
		ID:        ev.ID,
		ParentID:  ev.ParentID,
		Depth:     ev.Depth,
		Side:      ev.Side,
		Bound:     ev.Bound,
		Outcome:   ev.Outcome,
		Children:  ev.Children,
		Visits:    1,
		Incumbent: r.pendingBest[ev.ID],
	}
	delete(r.pendingBest, ev.ID)
	r.order = append(r.order, ev.ID)
}

// OnIncumbent marks the node that produced an incumbent. The node event
// follows the incumbent event, so the mark may be pending.
func (r *Recorder) OnIncumbent(_ context.Context, _ float64, nodeID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.nodes[nodeID]; ok {
		n.Incumbent = true
		return
	}
	r.pendingBest[nodeID] = true
}

func (r *Recorder) OnSearchComplete(_ context.Context, s observability.SearchSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = &s
}

// Snapshot copies the current recording.
func (r *Recorder) Snapshot() *Tree {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &Tree{
		Solver:    r.solver,
		Orderer:   r.orderer,
		Nodes:     make([]Node, 0, len(r.order)),
		Truncated: r.truncated,
	}
	for _, id := range r.order {
		t.Nodes = append(t.Nodes, *r.nodes[id])
	}
	if r.summary != nil {
		s := *r.summary
		t.Summary = &s
	}
	return t
}

// Outcomes counts recorded nodes by outcome.
func (t *Tree) Outcomes() map[string]int {
	out := make(map[string]int)
	for _, n := range t.Nodes {
		out[n.Outcome]++
	}
	return out
}

// MaxDepth is the depth of the deepest recorded node.
func (t *Tree) MaxDepth() int {
	d := 0
	for _, n := range t.Nodes {
		d = max(d, n.Depth)
	}
	return d
}

// Contains reports whether the node with the given ID was recorded.
func (t *Tree) Contains(id int) bool {
	return slices.ContainsFunc(t.Nodes, func(n Node) bool { return n.ID == id })
}

var _ observability.SolverHooks = (*Recorder)(nil)
