package knapsack

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/bnbsearch/pkg/bnb"
	errs "github.com/matzehuels/bnbsearch/pkg/errors"
)

// DefaultMemoSize is the number of relaxations a Workspace remembers.
const DefaultMemoSize = 4096

// Workspace is the bound-computation context for one Problem. It
// implements bnb.Workspace.
//
// A Workspace is not safe for concurrent use; give every solver its own.
type Workspace struct {
	p     *Problem
	order []int // item indices by descending value density
	memo  *lru.Cache[string, *relaxation]

	nextID       int
	hits, misses int
}

// NewWorkspace prepares p for searching. memoSize <= 0 selects
// DefaultMemoSize.
func NewWorkspace(p *Problem, memoSize int) (*Workspace, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if memoSize <= 0 {
		memoSize = DefaultMemoSize
	}
	memo, err := lru.New[string, *relaxation](memoSize)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "create relaxation memo")
	}

	order := make([]int, len(p.Items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(density(p.Items[b]), density(p.Items[a]))
	})
	return &Workspace{p: p, order: order, memo: memo}, nil
}

func density(it Item) float64 { return it.Value / it.Weight }

// Problem returns the instance being searched.
func (w *Workspace) Problem() *Problem { return w.p }

// MemoStats reports relaxation memo hits and misses.
func (w *Workspace) MemoStats() (hits, misses int) { return w.hits, w.misses }

// Root returns a fresh root node and restarts ID allocation.
func (w *Workspace) Root() *Node {
	w.nextID = 1
	return &Node{
		BaseNode: bnb.NewRootNode(0),
		in:       roaring.New(),
		out:      roaring.New(),
		item:     -1,
	}
}

// Activate implements bnb.Workspace.
func (w *Workspace) Activate(_ context.Context, n bnb.Node) (bnb.Active, error) {
	kn, ok := n.(*Node)
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "node %d is %T, not a knapsack node", n.ID(), n)
	}
	return &active{w: w, n: kn}, nil
}

// Node is a knapsack subproblem: the items fixed into and out of the
// packing by the branching decisions above it.
type Node struct {
	bnb.BaseNode
	in, out *roaring.Bitmap
	item    int // item fixed by the branch that created the node; -1 for the root
}

// DeltaKey implements bnb.BranchDelta.
func (n *Node) DeltaKey() int { return n.item }

// Fixed returns the items fixed in and out at this node.
func (n *Node) Fixed() (in, out []uint32) { return n.in.ToArray(), n.out.ToArray() }

func (n *Node) signature() string { return n.in.String() + "/" + n.out.String() }

// walk is the state of the density-ordered fill just before the first
// item that did not fit. Children that exclude that item resume from it.
type walk struct {
	pos       int     // position in the density order
	value     float64 // value of fixed-in and fully taken items
	remaining float64 // capacity left
}

// relaxation is the Dantzig relaxation of one node.
type relaxation struct {
	infeasible bool
	bound      float64
	fractional int // item taken fractionally; -1 when the relaxation is integral
	x          []float64
	stop       walk
}

// DeltaValue implements bnb.DeltaValuer.
func (r *relaxation) DeltaValue(item int) (float64, bool) {
	if item < 0 || item >= len(r.x) {
		return 0, false
	}
	return r.x[item], true
}

func (w *Workspace) relax(n *Node) *relaxation {
	key := n.signature()
	if r, ok := w.memo.Get(key); ok {
		w.hits++
		return r
	}
	w.misses++

	r := &relaxation{fractional: -1, x: make([]float64, len(w.p.Items))}
	start := walk{remaining: w.p.Capacity}
	it := n.in.Iterator()
	for it.HasNext() {
		item := it.Next()
		r.x[item] = 1
		start.value += w.p.Items[item].Value
		start.remaining -= w.p.Items[item].Weight
	}
	if start.remaining < 0 {
		r.infeasible = true
		r.bound = bnb.WorstScore
		w.memo.Add(key, r)
		return r
	}
	if prev, ok := n.WarmStart().(walk); ok && n.Side() == 0 && n.item >= 0 {
		// The parent filled order[:prev.pos] fully; excluding the item at
		// prev.pos leaves that prefix unchanged.
		start = prev
		start.pos++
		for _, item := range w.order[:start.pos] {
			if !n.out.Contains(uint32(item)) {
				r.x[item] = 1
			}
		}
	}

	cur := start
	for ; cur.pos < len(w.order); cur.pos++ {
		item := w.order[cur.pos]
		if n.in.Contains(uint32(item)) || n.out.Contains(uint32(item)) {
			continue
		}
		it := w.p.Items[item]
		if it.Weight <= cur.remaining {
			r.x[item] = 1
			cur.value += it.Value
			cur.remaining -= it.Weight
			continue
		}
		frac := cur.remaining / it.Weight
		r.x[item] = frac
		r.fractional = item
		r.bound = cur.value + frac*it.Value
		r.stop = cur
		w.memo.Add(key, r)
		return r
	}
	r.bound = cur.value
	r.stop = cur
	w.memo.Add(key, r)
	return r
}

type active struct {
	w     *Workspace
	n     *Node
	relax *relaxation
}

func (a *active) Node() bnb.Node { return a.n }

// Bound computes the Dantzig bound and reports StatusPruned when it
// cannot beat incumbentScore.
func (a *active) Bound(_ context.Context, incumbentScore float64) (*bnb.RelaxedSolution, error) {
	r := a.w.relax(a.n)
	a.relax = r
	if r.infeasible {
		return &bnb.RelaxedSolution{Status: bnb.StatusInfeasible, Score: bnb.WorstScore}, nil
	}
	if r.fractional >= 0 {
		a.n.SetWarmStart(r.stop)
	}
	status := bnb.StatusOptimal
	if r.bound <= incumbentScore {
		status = bnb.StatusPruned
	}
	return &bnb.RelaxedSolution{Status: status, Score: r.bound, Values: r}, nil
}

// FeasibleSolution packs the integral part of the relaxation and then
// fills the remaining capacity greedily by density.
func (a *active) FeasibleSolution(context.Context) (bnb.Solution, error) {
	r := a.relax
	if r == nil {
		return nil, errs.New(errs.ErrCodeOracle, "feasible solution requested before bound at node %d", a.n.ID())
	}
	if r.infeasible {
		return nil, nil
	}
	sol := &Solution{}
	remaining := a.w.p.Capacity
	packed := make([]bool, len(a.w.p.Items))
	for item, v := range r.x {
		if v == 1 {
			packed[item] = true
			remaining -= a.w.p.Items[item].Weight
		}
	}
	for _, item := range a.w.order {
		if packed[item] || a.n.out.Contains(uint32(item)) {
			continue
		}
		if wt := a.w.p.Items[item].Weight; wt <= remaining {
			packed[item] = true
			remaining -= wt
		}
	}
	for item, ok := range packed {
		if ok {
			sol.Items = append(sol.Items, item)
			sol.Value += a.w.p.Items[item].Value
			sol.Weight += a.w.p.Items[item].Weight
		}
	}
	return sol, nil
}

// Branch splits on the fractional item: side 0 excludes it, side 1
// includes it. An integral relaxation is a leaf.
func (a *active) Branch(context.Context) ([]bnb.Node, error) {
	r := a.relax
	if r == nil {
		return nil, errs.New(errs.ErrCodeOracle, "branch before bound at node %d", a.n.ID())
	}
	if r.infeasible || r.fractional < 0 {
		return nil, nil
	}
	item := uint32(r.fractional)

	exclude := a.w.child(a.n, 0, r.fractional)
	exclude.out.Add(item)
	include := a.w.child(a.n, 1, r.fractional)
	include.in.Add(item)
	return []bnb.Node{exclude, include}, nil
}

func (w *Workspace) child(parent *Node, side, item int) *Node {
	id := w.nextID
	w.nextID++
	return &Node{
		BaseNode: bnb.NewChildNode(id, parent, side, -math.Ln2),
		in:       parent.in.Clone(),
		out:      parent.out.Clone(),
		item:     item,
	}
}

// The Dantzig bound runs in linear time and needs no budget.
func (a *active) UpdateTimeRemaining(time.Duration) {}

// Greedy packs items by descending density. It is a cheap initial
// incumbent.
func Greedy(p *Problem) *Solution {
	ws, err := NewWorkspace(p, 1)
	if err != nil {
		return nil
	}
	a := &active{w: ws, n: ws.Root()}
	a.relax = ws.relax(a.n)
	sol, _ := a.FeasibleSolution(context.Background())
	if sol == nil {
		return nil
	}
	return sol.(*Solution)
}

// BruteForce enumerates every packing. It refuses more than 24 items.
func BruteForce(p *Problem) (*Solution, error) {
	n := len(p.Items)
	if n > 24 {
		return nil, errs.New(errs.ErrCodeUnsupported, "brute force over %d items", n)
	}
	best := &Solution{Items: []int{}}
	for mask := range 1 << n {
		var weight, value float64
		for i := range n {
			if mask&(1<<i) != 0 {
				weight += p.Items[i].Weight
				value += p.Items[i].Value
			}
		}
		if weight > p.Capacity || value <= best.Value {
			continue
		}
		best = &Solution{Value: value, Weight: weight}
		for i := range n {
			if mask&(1<<i) != 0 {
				best.Items = append(best.Items, i)
			}
		}
	}
	return best, nil
}

func (n *Node) String() string {
	return fmt.Sprintf("node %d (depth %d, in %v, out %v)", n.ID(), n.Depth(), n.in, n.out)
}
