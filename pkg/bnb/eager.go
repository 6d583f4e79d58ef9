package bnb

import (
	"context"

	errs "github.com/matzehuels/bnbsearch/pkg/errors"
)

// EagerSolver bounds every child as soon as it is created and inserts only
// the children that can still beat the incumbent, so the queue never holds
// a node whose bound is unknown. Nodes are selected by a Comparator.
//
// Nodes are bounded again when popped because the workspace only holds the
// relaxation of the active node. Workspaces should cache relaxations.
type EagerSolver struct {
	ws   Workspace
	less Comparator
	cfg  Config
	opts Options
}

// NewEagerSolver returns a solver that selects nodes by less. A nil less
// selects ByBound.
func NewEagerSolver(ws Workspace, less Comparator, cfg Config, opts Options) *EagerSolver {
	if less == nil {
		less = ByBound
	}
	return &EagerSolver{ws: ws, less: less, cfg: cfg, opts: opts.withDefaults()}
}

// Solve runs the search. A node is closed once its bound is within
// Epsilon (absolute) of the incumbent.
func (s *EagerSolver) Solve(ctx context.Context, root Node, initial Solution, initialScore float64) (*Result, error) {
	st := newSearch(s.cfg, s.opts, initial, initialScore)
	st.absoluteGap = true
	st.hooks.OnSearchStart(ctx, string(SolverEager), string(s.cfg.Orderer.Kind))
	st.eval.EvalIncumbent(ctx, st.incumbent, st.incumbentScore)

	res := &Result{}
	q := newNodeQueue(s.less)
	var runErr error

	if s.insert(ctx, st, root) {
		q.push(root)
	}

	for q.Len() > 0 {
		if stop, err := st.stop(ctx, res); stop {
			runErr = err
			break
		}
		node := q.pop()
		if s.closed(st, node.OptimisticBound()) {
			st.fathom(ctx, node, FathomPruned)
			continue
		}

		active, err := st.activate(ctx, s.ws, node)
		if err != nil {
			st.logger.Warn("activation failed, pruning node", "node", node.ID(), "err", err)
			st.fathom(ctx, node, FathomPruned)
			continue
		}
		relaxed := st.bound(ctx, active)
		switch {
		case relaxed.Status == StatusInfeasible:
			st.fathom(ctx, node, FathomInfeasible)
			continue
		case relaxed.Status == StatusUnknown || relaxed.Status == StatusPruned,
			s.closed(st, relaxed.Score):
			st.fathom(ctx, node, FathomPruned)
			continue
		}

		children := st.branch(ctx, active)
		if len(children) == 0 {
			st.fathom(ctx, node, FathomBottomedOut)
			continue
		}
		inserted := 0
		for _, c := range children {
			if s.insert(ctx, st, c) {
				q.push(c)
				inserted++
			}
		}
		st.expanded(ctx, node, inserted)
		st.tick(q.maxBound(), q.Len())
	}

	ub := st.incumbentScore
	if q.Len() > 0 {
		ub = q.maxBound()
	}
	st.finish(ctx, res, ub, string(SolverEager))
	return res, runErr
}

// insert activates and bounds n and reports whether it belongs in the queue.
func (s *EagerSolver) insert(ctx context.Context, st *search, n Node) bool {
	st.processed++
	active, err := st.activate(ctx, s.ws, n)
	if err != nil {
		st.logger.Warn("activation failed, pruning node", "node", n.ID(), "err", err)
		st.fathom(ctx, n, FathomPruned)
		return false
	}
	relaxed := st.bound(ctx, active)
	if !st.evaluate(ctx, active, relaxed) {
		return false
	}
	if s.closed(st, relaxed.Score) {
		st.fathom(ctx, n, FathomPruned)
		return false
	}
	return true
}

// closed reports whether a bound can no longer beat the incumbent by more
// than Epsilon.
func (s *EagerSolver) closed(st *search, bound float64) bool {
	return st.withinEpsilon(bound, st.incumbentScore)
}

// New builds the solver selected by cfg.Solver, with its frontier policy,
// child orderer and random source.
func New(ws Workspace, cfg Config, opts Options) (Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := NewRand(cfg.Orderer.Seed)
	switch cfg.Solver {
	case SolverEager:
		less, err := eagerComparator(cfg.Orderer.Kind)
		if err != nil {
			return nil, err
		}
		return NewEagerSolver(ws, less, cfg, opts), nil
	default:
		orderer, err := NewNodeOrderer(cfg.Orderer, cfg.NewChildOrderer(rng), rng)
		if err != nil {
			return nil, err
		}
		return NewLazySolver(ws, orderer, cfg, opts), nil
	}
}

func eagerComparator(k OrdererKind) (Comparator, error) {
	switch k {
	case OrdererBFS, OrdererPlungingBFS:
		return ByBound, nil
	case OrdererDFS, OrdererDFSBFC:
		return ByDepthThenBound, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidConfig, "eager solver cannot use orderer %q", k)
}
