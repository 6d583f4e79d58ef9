// Package bnb implements a generic branch-and-bound search for
// maximization problems over an implicitly defined tree.
//
// # Overview
//
// The engine repeatedly selects a promising unexplored node, asks a bound
// oracle for an optimistic bound, and then either fathoms the node,
// records a new incumbent, or branches it into children. The problem
// itself stays behind three interfaces:
//
//   - [Node] is the bookkeeping of one tree node (ID, depth, side, cached
//     bound, log-space share, warm start). Domain nodes embed [BaseNode].
//   - [Workspace] owns the expensive bound-computation context. Exactly one
//     node is active at a time; [Workspace.Activate] returns its [Active]
//     handle.
//   - [Active] computes the relaxation, extracts feasible solutions and
//     branches.
//
// # Solvers
//
// [LazySolver] bounds a node when the frontier selects it. The frontier is
// a pluggable [NodeOrderer]:
//
//	dfs               LIFO, children ordered by a ChildOrderer
//	bfs               best bound first
//	dfs-bfc           deepest first, then best bound
//	plunging-bfs      best bound with bounded depth-first plunges
//	depth-stratified  random dives to a rotating target depth
//	random-walk       non-backtracking random dives
//
// The last two never exhaust the tree and are meant for sampling node
// costs; they need a timeout or node limit.
//
// [EagerSolver] bounds children before inserting them into a single
// comparator-ordered queue and drops the ones that cannot beat the
// incumbent.
//
// # Usage
//
//	cfg := bnb.DefaultConfig()
//	cfg.Timeout = 30 * time.Second
//	solver, err := bnb.New(ws, cfg, bnb.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	res, err := solver.Solve(ctx, root, nil, bnb.WorstScore)
//
// A search stops with [OptimalSolutionFound] once the gap between the global
// upper bound and the incumbent is within [Config.Epsilon]. The lazy solver
// measures the gap relative to the incumbent; the eager solver measures it
// in absolute score.
package bnb
