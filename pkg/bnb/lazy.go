package bnb

import (
	"context"

	errs "github.com/matzehuels/bnbsearch/pkg/errors"
)

// monotoneTolerance absorbs rounding noise in the upper bound check.
const monotoneTolerance = 1e-9

// Solver runs one branch-and-bound search from root. initial may be nil,
// in which case initialScore is ignored and the search starts without an
// incumbent.
type Solver interface {
	Solve(ctx context.Context, root Node, initial Solution, initialScore float64) (*Result, error)
}

// LazySolver bounds a node only when the frontier selects it. The frontier
// policy is a NodeOrderer; a second queue ordered by bound mirrors the
// frontier so the global upper bound is always available.
//
// A LazySolver is not safe for concurrent use. Run one solver per
// Workspace.
type LazySolver struct {
	ws      Workspace
	orderer NodeOrderer
	cfg     Config
	opts    Options
}

// NewLazySolver returns a solver exploring with orderer.
func NewLazySolver(ws Workspace, orderer NodeOrderer, cfg Config, opts Options) *LazySolver {
	return &LazySolver{ws: ws, orderer: orderer, cfg: cfg, opts: opts.withDefaults()}
}

// Solve runs the search. It returns the best incumbent found together with
// the proof status. The returned error is non-nil when ctx was cancelled or
// the frontier misbehaved; the Result is valid in both cases.
//
// A sampling orderer never runs out of nodes, so Solve rejects one with an
// INVALID_CONFIG error and a nil Result unless a timeout or node limit is
// set.
func (s *LazySolver) Solve(ctx context.Context, root Node, initial Solution, initialScore float64) (*Result, error) {
	exhaustive := s.cfg.Orderer.Kind.Exhaustive()
	if _, ok := s.orderer.(discarder); ok {
		exhaustive = false
	}
	if !exhaustive && s.cfg.Timeout == 0 && s.cfg.NodeLimit == 0 {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "sampling orderer needs a timeout or node limit")
	}
	st := newSearch(s.cfg, s.opts, initial, initialScore)
	st.trackSpace = exhaustive

	st.hooks.OnSearchStart(ctx, string(SolverLazy), string(s.cfg.Orderer.Kind))
	st.eval.EvalIncumbent(ctx, st.incumbent, st.incumbentScore)

	mirror := newNodeQueue(ByBound)
	s.orderer.Clear()
	if d, ok := s.orderer.(discarder); ok {
		d.OnDiscard(func(n Node) { mirror.remove(n.ID()) })
		defer d.OnDiscard(nil)
	}
	s.orderer.Add(root)
	mirror.push(root)

	upperBound := func() float64 {
		if !exhaustive {
			return root.OptimisticBound()
		}
		if top, ok := mirror.peek(); ok {
			return top.OptimisticBound()
		}
		return WorstScore
	}

	var (
		res         = &Result{}
		pending     Node
		rootRelaxed *RelaxedSolution
		runErr      error
		prevUB      = BestScore
	)

	for !s.orderer.IsEmpty() {
		ub := upperBound()
		if ub > prevUB+monotoneTolerance {
			st.logger.Warn("global upper bound increased", "previous", prevUB, "current", ub)
		}
		prevUB = ub

		node, err := s.orderer.Remove()
		if err != nil {
			runErr = err
			break
		}
		mirror.remove(node.ID())

		if st.withinEpsilon(max(ub, st.incumbentScore), st.incumbentScore) {
			pending = node
			break
		}
		if stop, err := st.stop(ctx, res); stop {
			pending, runErr = node, err
			break
		}
		st.processed++

		active, err := st.activate(ctx, s.ws, node)
		if err != nil {
			st.logger.Warn("activation failed, pruning node", "node", node.ID(), "err", err)
			st.fathom(ctx, node, FathomPruned)
			continue
		}
		relaxed := st.bound(ctx, active)
		if node.Depth() == 0 && rootRelaxed == nil && relaxed.Status != StatusUnknown {
			rootRelaxed = relaxed
		}
		if !st.evaluate(ctx, active, relaxed) {
			continue
		}

		children := st.branch(ctx, active)
		if len(children) == 0 {
			st.fathom(ctx, node, FathomBottomedOut)
			continue
		}
		for _, c := range children {
			mirror.push(c)
		}
		s.orderer.AddChildren(Expansion{
			Parent:      node,
			Relaxed:     relaxed,
			RootRelaxed: rootRelaxed,
			Children:    children,
		})
		st.expanded(ctx, node, len(children))
		st.tick(ub, s.orderer.Size())
	}

	var finalUB float64
	switch {
	case !exhaustive:
		finalUB = root.OptimisticBound()
	case pending == nil && s.orderer.IsEmpty():
		finalUB = st.incumbentScore
	default:
		finalUB = mirror.maxBound()
		if pending != nil {
			finalUB = max(finalUB, pending.OptimisticBound())
		}
	}
	st.finish(ctx, res, finalUB, string(SolverLazy))
	return res, runErr
}
